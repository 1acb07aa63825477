package api

import (
	"github.com/JaimeStill/captioner/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions sessions.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Sessions: sessions.New(runtime.Engine, runtime.Logger),
	}
}
