package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("rows loaded", slog.String("table", "stores"))
		logger.Error("write failed", slog.Int("code", 5))

		if got := len(handler.GetRecords()); got != 2 {
			t.Errorf("Expected 2 records, got %d", got)
		}
		if !handler.ContainsMessage("rows loaded") {
			t.Error("Expected to find 'rows loaded'")
		}
		if !handler.ContainsAttr("table", "stores") {
			t.Error("Expected to find attribute table=stores")
		}
	})

	t.Run("derived loggers share records and keep attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "cleaner").Warn("no price")
		logger.Info("done")

		if handler.Count() != 2 {
			t.Errorf("Expected 2 records, got %d", handler.Count())
		}
		if !handler.ContainsAttr("component", "cleaner") {
			t.Error("Expected bound attribute component=cleaner")
		}
		AssertLogContains(t, handler, slog.LevelWarn, "no price")
	})

	t.Run("counts and filters", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("tick")
		logger.Debug("tick")
		logger.Info("tock")

		if n := handler.CountMessage("tick"); n != 2 {
			t.Errorf("Expected 2 tick records, got %d", n)
		}
		if n := len(handler.GetRecordsByLevel(slog.LevelInfo)); n != 1 {
			t.Errorf("Expected 1 info record, got %d", n)
		}
		AssertNoErrors(t, handler)
	})
}
