package bonds

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	notFound := &NotFoundError{Resource: "bond", Ref: "42"}
	validation := &ValidationError{Msg: "bad input"}
	upstream := &UpstreamError{Op: "fetch bonds", Err: fmt.Errorf("503")}

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(validation))

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(upstream))

	assert.True(t, IsUpstream(upstream))
	assert.False(t, IsUpstream(notFound))
}

func TestErrorTaxonomy_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", &NotFoundError{Resource: "company", Ref: "acme"})
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "acme")
}

func TestUpstreamError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := &UpstreamError{Op: "fetch bonds", Err: inner}
	assert.ErrorIs(t, err, inner)
}
