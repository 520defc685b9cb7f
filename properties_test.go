package systemctl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"0775", StringValue("0775")},
		{"00", StringValue("00")},
		{"0", IntValue(0)},
		{"42", IntValue(42)},
		{"-3", IntValue(-3)},
		{"-07", IntValue(-7)},
		{"yes", BoolValue(true)},
		{"no", BoolValue(false)},
		{"Yes", StringValue("Yes")},
		{"foo=bar", StringValue("foo=bar")},
		{"", StringValue("")},
		{"1.5", StringValue("1.5")},
		{"18446744073709551615", StringValue("18446744073709551615")},
		{"infinity", StringValue("infinity")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseValue(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "0775", StringValue("0775").String())
	assert.Equal(t, "-3", IntValue(-3).String())
	assert.Equal(t, "yes", BoolValue(true).String())
	assert.Equal(t, "no", BoolValue(false).String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "int", KindInt.String())
	assert.Equal(t, "bool", KindBool.String())
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"ActiveState", "activeState"},
		{"SubState", "subState"},
		{"UnitFileState", "unitFileState"},
		{"MainPID", "mainPID"},
		{"CPUUsageNSec", "CPUUsageNSec"},
		{"IOReadBytes", "IOReadBytes"},
		{"IPAccounting", "IPAccounting"},
		{"NUMAPolicy", "NUMAPolicy"},
		{"OOMScoreAdjust", "OOMScoreAdjust"},
		{"GID", "GID"},
		{"UID", "UID"},
		{"Id", "id"},
		{"activeState", "activeState"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.key))
		})
	}
}

func TestParseProperties(t *testing.T) {
	output := "ActiveState=active\n" +
		"SubState=running\n" +
		"\n" +
		"Environment=FOO=bar BAZ=1\n" +
		"UMask=0022\n" +
		"NRestarts=3\n" +
		"CPUAccounting=yes\n" +
		"garbage line\n" +
		"Description=\n"

	props := ParseProperties([]byte(output))

	assert.Equal(t, StringValue("active"), props[PropActiveState])
	assert.Equal(t, StringValue("running"), props[PropSubState])
	assert.Equal(t, StringValue("FOO=bar BAZ=1"), props["environment"])
	assert.Equal(t, StringValue("0022"), props["uMask"])
	assert.Equal(t, IntValue(3), props["nRestarts"])
	assert.Equal(t, BoolValue(true), props["CPUAccounting"])
	assert.Equal(t, StringValue(""), props[PropDescription])
	assert.Len(t, props, 7)
}

func TestParsePropertiesLongLines(t *testing.T) {
	long := strings.Repeat("x", 3<<20)
	output := "ExecStart=" + long + "\r\nSubState=running\nMainPID=7\n"

	props := ParseProperties([]byte(output))

	require.Len(t, props, 3)
	assert.Equal(t, StringValue(long), props["execStart"])
	assert.Equal(t, StringValue("running"), props[PropSubState])
	assert.Equal(t, IntValue(7), props[PropMainPID])
}

func TestParsePropertiesEmpty(t *testing.T) {
	assert.Empty(t, ParseProperties(nil))
	assert.Empty(t, ParseProperties([]byte("\n\n")))
}

func TestPropertiesAccessors(t *testing.T) {
	props := ParseProperties([]byte("MainPID=42\nRemainAfterExit=no\nActiveState=active\n"))

	pid, ok := props.Int(PropMainPID)
	require.True(t, ok)
	assert.Equal(t, int64(42), pid)

	remain, ok := props.Bool("remainAfterExit")
	require.True(t, ok)
	assert.False(t, remain)

	_, ok = props.Int(PropActiveState)
	assert.False(t, ok, "string property must not read as int")

	assert.Equal(t, "42", props.String(PropMainPID))
	assert.Equal(t, "", props.String("missing"))

	v, ok := props.Get(PropActiveState)
	require.True(t, ok)
	assert.Equal(t, KindString, v.Kind())
}

func TestPropertiesClone(t *testing.T) {
	props := ParseProperties([]byte("ActiveState=active\n"))
	clone := props.Clone()
	clone[PropActiveState] = StringValue("failed")

	assert.Equal(t, "active", props.String(PropActiveState))
}

func TestValueTypeSwitch(t *testing.T) {
	props := ParseProperties([]byte("A=1\nB=yes\nC=text\n"))

	kinds := make(map[string]Kind)
	for key, v := range props {
		switch v.(type) {
		case IntValue:
			kinds[key] = KindInt
		case BoolValue:
			kinds[key] = KindBool
		case StringValue:
			kinds[key] = KindString
		default:
			t.Fatalf("unexpected value type %T", v)
		}
	}

	assert.Equal(t, map[string]Kind{"a": KindInt, "b": KindBool, "c": KindString}, kinds)
}
