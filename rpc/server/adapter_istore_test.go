package server

import (
	"testing"

	"github.com/ValentinKolb/sKV/lib/store/lstore"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/stretchr/testify/assert"
)

func TestIStoreAdapter(t *testing.T) {
	a := NewIStoreServerAdapter()
	s := lstore.NewLocalStore()

	steps := []struct {
		req  string
		resp string
	}{
		{"put k1 v1", "null"},
		{"get k1", "v1"},
		{"put k1 v2", "v1"},
		{"put k2 v", "null"},
		{"size", "2"},
		{"rm k1", "v2"},
		{"rm k1", "null"},
		{"get k1", "null"},
		{"clear", "1"},
		{"size", "0"},
	}
	for _, step := range steps {
		assert.Equal(t, step.resp, a.Handle(step.req, s), step.req)
	}
}

func TestIStoreAdapterProtocolViolations(t *testing.T) {
	a := NewIStoreServerAdapter()
	s := lstore.NewLocalStore()

	for _, req := range []string{"", "foo", "put k1", "put k1 v1 extra", "get", "get a b", "size 1", "clear all", "rm"} {
		resp := a.Handle(req, s)
		_, _, err := common.ParseResponse(req, resp)
		assert.True(t, common.IsProtocolViolation(err), "%q answered with %q", req, resp)
	}
	assert.Equal(t, 0, s.Size())

	// empty keys are allowed
	assert.Equal(t, "null", a.Handle("put  v", s))
	assert.Equal(t, "v", a.Handle("get ", s))

	assert.Contains(t, a.Handle("put k v", nil), common.ErrPrefix)
}
