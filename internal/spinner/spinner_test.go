package spinner

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_RendersAndClears(t *testing.T) {
	var buf bytes.Buffer

	stop := Start(&buf, "Gathering responses")
	time.Sleep(350 * time.Millisecond)
	stop()

	output := buf.String()
	assert.Contains(t, output, "Gathering responses")
	// The final write wipes the line and parks the cursor at column zero.
	assert.True(t, strings.HasSuffix(output, "\r"))
	assert.Contains(t, output, strings.Repeat(" ", len("Gathering responses")))
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer

	stop := Start(&buf, "waiting")
	stop()
	stop()
}
