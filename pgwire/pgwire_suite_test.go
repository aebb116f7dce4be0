package pgwire_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPGWire(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "pgwire wire-protocol suite")
}
