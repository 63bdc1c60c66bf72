package main

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMain(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Main Suite")
}

var _ = Describe("parseSeq", func() {
	It("should parse simple actions", func() {
		steps, err := parseSeq("ok,fail,call")
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(3))
		Expect(steps[0].action).To(Equal("ok"))
		Expect(steps[1].action).To(Equal("fail"))
		Expect(steps[2].action).To(Equal("call"))
	})

	It("should parse wait steps with fractional seconds", func() {
		steps, err := parseSeq("fail,wait:2.5,ok")
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(3))
		Expect(steps[1].action).To(Equal("wait"))
		Expect(steps[1].wait).To(Equal(2500 * time.Millisecond))
	})

	It("should tolerate whitespace and empty tokens", func() {
		steps, err := parseSeq(" ok , fail ,,ok")
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(3))
	})

	It("should reject unknown steps", func() {
		_, err := parseSeq("ok,explode")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("explode"))
	})

	It("should reject malformed wait steps", func() {
		_, err := parseSeq("wait:soon")
		Expect(err).To(HaveOccurred())
	})

	It("should reject an empty sequence", func() {
		_, err := parseSeq(" , ")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("run", func() {
	It("should fail without a command", func() {
		Expect(run(nil)).To(Equal(2))
	})

	It("should fail on an unknown command", func() {
		Expect(run([]string{"bogus"})).To(Equal(2))
	})

	It("should print usage for help", func() {
		Expect(run([]string{"help"})).To(Equal(0))
	})

	It("should simulate a breaker sequence", func() {
		code := run([]string{"breaker", "simulate", "--seq", "fail,fail,fail,call,wait:5,ok,ok", "--failure-threshold", "3", "--success-threshold", "2", "--cooldown", "5s"})
		Expect(code).To(Equal(0))
	})

	It("should reject an invalid breaker config", func() {
		code := run([]string{"breaker", "call", "--ok", "--failure-threshold", "0"})
		Expect(code).To(Equal(1))
	})

	It("should print backoff delays", func() {
		code := run([]string{"backoff", "delays", "--jitter", "none", "--max-attempts", "3"})
		Expect(code).To(Equal(0))
	})

	It("should reject an unknown jitter mode", func() {
		code := run([]string{"backoff", "delays", "--jitter", "sometimes"})
		Expect(code).To(Equal(1))
	})

	It("should run a ratelimit check", func() {
		code := run([]string{"ratelimit", "check", "--rate", "2", "--capacity", "4", "--json"})
		Expect(code).To(Equal(0))
	})

	It("should reject a cost above capacity", func() {
		code := run([]string{"ratelimit", "check", "--rate", "2", "--capacity", "4", "--cost", "5"})
		Expect(code).To(Equal(1))
	})

	It("should run a ratelimit simulation", func() {
		code := run([]string{"ratelimit", "simulate", "--rate", "5", "--capacity", "2", "--n", "6", "--interval", "100ms"})
		Expect(code).To(Equal(0))
	})
})
