package logger_test

import (
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bjaus/resilience/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("should create logger with info level", func() {
			log := logger.New("info", false, logger.FormatText)
			Expect(log).NotTo(BeNil())
		})

		It("should create logger with debug level", func() {
			log := logger.New("debug", false, logger.FormatText)
			Expect(log).NotTo(BeNil())
		})

		It("should create json logger", func() {
			log := logger.New("info", false, logger.FormatJSON)
			Expect(log).NotTo(BeNil())
		})

		It("should default to info for invalid level", func() {
			log := logger.New("invalid", false, logger.FormatText)
			Expect(log).NotTo(BeNil())

			Expect(log.Enabled(nil, slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(nil, slog.LevelDebug)).To(BeFalse())
		})

		It("should respect debug level", func() {
			log := logger.New("debug", false, logger.FormatText)

			Expect(log.Enabled(nil, slog.LevelDebug)).To(BeTrue())
			Expect(log.Enabled(nil, slog.LevelInfo)).To(BeTrue())
		})

		It("should respect warn level", func() {
			log := logger.New("warn", false, logger.FormatText)

			Expect(log.Enabled(nil, slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(nil, slog.LevelWarn)).To(BeTrue())
		})

		It("should respect error level", func() {
			log := logger.New("error", false, logger.FormatText)

			Expect(log.Enabled(nil, slog.LevelWarn)).To(BeFalse())
			Expect(log.Enabled(nil, slog.LevelError)).To(BeTrue())
		})

		It("should support addSource option", func() {
			log := logger.New("info", true, logger.FormatText)
			Expect(log).NotTo(BeNil())
		})
	})
})
