//go:build !opus
// +build !opus

package audiosource

import "fmt"

// decodeOpus reports an error in the default build; see opus_support.go and
// the teacher's opus_stub.go for the reasoning: libopus requires cgo and a
// system package, so it is opt-in via "go build -tags opus".
func decodeOpus(payload []byte) ([]byte, error) {
	return nil, fmt.Errorf("audiosource: opus payload received but built without -tags opus")
}
