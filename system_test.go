package systemctl

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable(t *testing.T) {
	fi, err := os.Lstat("/run/systemd/system")
	assert.Equal(t, err == nil && fi.IsDir(), Available())

	if Available() {
		assert.NoError(t, RequireSystemd())
	} else {
		assert.ErrorIs(t, RequireSystemd(), ErrNotSystemd)
	}
}
