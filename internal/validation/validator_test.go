package validation_test

import (
	"testing"

	"github.com/relaymesh/switchboard/internal/validation"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsPlainText(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate("please route this request"))
}

func TestValidate_RejectsBlank(t *testing.T) {
	v := validation.New()
	err := v.Validate("   ")
	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestValidate_RejectsOversized(t *testing.T) {
	v := validation.New()
	big := make([]byte, models.MaxPayloadLength+1)
	for i := range big {
		big[i] = 'x'
	}
	err := v.Validate(string(big))
	require.Error(t, err)
}

func TestValidate_RejectsScriptTag(t *testing.T) {
	v := validation.New()
	err := v.Validate("hello <script>alert(1)</script>")
	require.Error(t, err)
}

func TestValidate_RejectsJavascriptURI(t *testing.T) {
	v := validation.New()
	err := v.Validate("click javascript:doEvil()")
	require.Error(t, err)
}

func TestValidate_RejectsInlineEventHandler(t *testing.T) {
	v := validation.New()
	err := v.Validate(`<img src=x onerror=alert(1)>`)
	require.Error(t, err)
}

func TestSanitize_TrimsCollapsesAndStripsAngleBrackets(t *testing.T) {
	v := validation.New()
	got := v.Sanitize("  hello   <b>world</b>  ")
	assert.Equal(t, "hello bworld/b", got)
}

func TestSanitize_NeverFailsOnNonNullInput(t *testing.T) {
	v := validation.New()
	assert.NotPanics(t, func() {
		v.Sanitize("")
	})
}
