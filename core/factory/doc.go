// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[settings.Store]()
//	reg.Register("diskv", func(conf map[string]any) (settings.Store, error) {
//	    var c struct{ Dir string `json:"dir"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewDiskvStore(c.Dir), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "diskv", Conf: map[string]any{"dir": "state"}})
package factory
