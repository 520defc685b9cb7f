package systemctl

import (
	"context"
	"strings"
	"testing"
)

// a show output of realistic size
var benchShowOutput = func() []byte {
	var sb strings.Builder
	sb.WriteString(showActiveRunning)
	sb.WriteString("UMask=0022\nCPUUsageNSec=123456789\nRemainAfterExit=no\nMemoryCurrent=18446744073709551615\n")
	for i := 0; i < 200; i++ {
		sb.WriteString("ExecStartPre={ path=/usr/sbin/nginx ; argv[]=/usr/sbin/nginx -t -q -g daemon on; master_process on; }\n")
	}
	return []byte(sb.String())
}()

// BenchmarkParseProperties measures parsing a full show output
func BenchmarkParseProperties(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		props := ParseProperties(benchShowOutput)
		if props.String(PropActiveState) != StateActive {
			b.Fatal("unexpected parse result")
		}
	}
}

// BenchmarkParseValue measures value coercion across kinds
func BenchmarkParseValue(b *testing.B) {
	inputs := []string{"0775", "42", "-3", "yes", "no", "foo=bar", "18446744073709551616"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ParseValue(inputs[i%len(inputs)])
	}
}

// BenchmarkNormalizeKey measures key normalization
func BenchmarkNormalizeKey(b *testing.B) {
	keys := []string{"ActiveState", "CPUUsageNSec", "IOWeight", "MainPID", "OOMPolicy"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = NormalizeKey(keys[i%len(keys)])
	}
}

// BenchmarkWaitForStateMatching measures the no-fetch fast path
func BenchmarkWaitForStateMatching(b *testing.B) {
	svc, err := Open(context.Background(), "nginx", WithRunner(newFakeRunner(showActiveRunning)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := svc.WaitForState(context.Background(), StateActive, StateRunning, 0); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkOperationString measures the Operation String method
func BenchmarkOperationString(b *testing.B) {
	ops := []Operation{OpShow, OpRestart, OpStop, OpEnable, OpDisable, OpEdit, OpDaemonReload, OpWait}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ops[i%len(ops)].String()
	}
}
