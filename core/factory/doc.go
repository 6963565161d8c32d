// Package factory builds pluggable modules (record stores, metric sinks)
// from configuration. A module is named by its type and carries a loosely
// typed conf map that each constructor decodes into its own struct:
//
//	stores := factory.NewRegistry[persist.Store]()
//	stores.MustRegister("jsonl", func(conf map[string]any) (persist.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return persist.NewJSONLStore(c.Path)
//	})
//	s, err := stores.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "nav.jsonl"}})
package factory
