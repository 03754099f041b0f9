package videoclip_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tauraamui/mapinterp/pkg/log"
)

func TestVideoClip(t *testing.T) {
	// make this as defer, in case a panic is handled by Ginkgo
	defer log.Silence()()

	RegisterFailHandler(Fail)
	RunSpecs(t, "VideoClip Suite")
}
