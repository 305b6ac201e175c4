package board

import (
	"errors"
	"net/http"

	"github.com/bsb-logistics/ganttboard/core/mutation"
	"github.com/bsb-logistics/ganttboard/core/remote"
	"github.com/bsb-logistics/ganttboard/core/schedule"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// RemoteCode is the persistence service's code for rejected calls.
	RemoteCode int `json:"remoteCode,omitempty"`
}

// ErrorResponse wraps an ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// statusFor maps the error taxonomy onto HTTP.
func statusFor(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: ErrorDetail{Message: err.Error()}}
	if schedule.IsNotFound(err) {
		body.Error.Code = "not_found"
		return http.StatusNotFound, body
	}
	switch mutation.Classify(err) {
	case mutation.OutcomeStructural:
		body.Error.Code = "structural"
		return http.StatusUnprocessableEntity, body
	case mutation.OutcomeRejected:
		body.Error.Code = "rejected"
		var re *remote.RejectedError
		if errors.As(err, &re) {
			body.Error.Message = re.Message
			body.Error.RemoteCode = re.Code
			if re.Code == remote.CodeNotFound {
				body.Error.Code = "not_found"
				return http.StatusNotFound, body
			}
		}
		return http.StatusConflict, body
	default:
		body.Error.Code = "transport"
		return http.StatusBadGateway, body
	}
}

func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}}
}
