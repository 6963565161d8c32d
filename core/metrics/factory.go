package metrics

import "github.com/navbus/navbus/core/factory"

var sinkRegistry = factory.NewRegistry[ValueSink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[ValueSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink creates a ValueSink from the provided configuration.
func NewSink(cfgs []factory.ModuleConfig) (ValueSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]ValueSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

func init() {
	sinkRegistry.MustRegister("nop", func(map[string]any) (ValueSink, error) {
		return NopSink{}, nil
	})
}
