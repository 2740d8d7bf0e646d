package machine

import (
	"log"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

//go:generate mockgen -destination "mock_machine_test.go" -package machine -self_package github.com/openavionics/flightcore/machine github.com/openavionics/flightcore/machine Sink,Source

func TestMachine(t *testing.T) {
	log.SetOutput(ginkgo.GinkgoWriter)
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Machine")
}
