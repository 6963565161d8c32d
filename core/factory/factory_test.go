package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	path  string
	fsync bool
}

func fakeStoreFactory(conf map[string]any) (*fakeStore, error) {
	var c struct {
		Path  string `json:"path"`
		Fsync bool   `json:"fsync"`
	}
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &fakeStore{path: c.Path, fsync: c.Fsync}, nil
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*fakeStore]()
	require.NoError(t, reg.Register("fake", fakeStoreFactory))
	s, err := reg.Create(ModuleConfig{Type: "fake", Conf: map[string]any{"path": "nav.log", "fsync": "true"}})
	require.NoError(t, err)
	assert.Equal(t, &fakeStore{path: "nav.log", fsync: true}, s)
	assert.Equal(t, []string{"fake"}, reg.Names())
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[*fakeStore]()
	require.NoError(t, reg.Register("jsonl", fakeStoreFactory))
	assert.Error(t, reg.Register("jsonl", fakeStoreFactory), "duplicate name")
	assert.Error(t, reg.Register("sqlite", nil), "nil factory")

	_, err := reg.Create(ModuleConfig{Type: "csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[jsonl]")
	assert.Panics(t, func() { reg.MustRegister("jsonl", fakeStoreFactory) })
}

func TestDecodeWeakTypes(t *testing.T) {
	var c struct {
		Path     string        `json:"path"`
		MaxSize  int           `json:"max_size_mb"`
		Interval time.Duration `json:"interval"`
	}
	err := Decode(map[string]any{"path": "/tmp/nav.jsonl", "max_size_mb": "10", "interval": "2s"}, &c)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/nav.jsonl", c.Path)
	assert.Equal(t, 10, c.MaxSize)
	assert.Equal(t, 2*time.Second, c.Interval)
}
