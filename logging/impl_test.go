package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestObservedLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("built sector", "address", "0.1", "vertices", 81)
	logger.Infof("radius %v", 100)
	logger.Warn("seam", " ", "check")

	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 3)
	test.That(t, entries[0].Message, test.ShouldEqual, "built sector")
	test.That(t, entries[0].ContextMap()["address"], test.ShouldEqual, "0.1")
	test.That(t, entries[0].ContextMap()["vertices"], test.ShouldEqual, int64(81))
	test.That(t, entries[1].Message, test.ShouldEqual, "radius 100")
	test.That(t, entries[2].Message, test.ShouldEqual, "seam check")
	for _, entry := range entries {
		test.That(t, entry.Caller.Defined, test.ShouldBeTrue)
		test.That(t, entry.Caller.File, test.ShouldEndWith, "impl_test.go")
	}

	test.That(t, logs.FilterMessage("radius 100").Len(), test.ShouldEqual, 1)
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Errorw("oops", "dangling")
	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	_, ok := entries[0].ContextMap()["dangling"]
	test.That(t, ok, test.ShouldBeTrue)
}

func TestLevels(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown")
	test.That(t, logs.Len(), test.ShouldEqual, 2)

	for _, tc := range []struct {
		in  string
		out Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.out)
	}
	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSublogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &impl{name: "planet", level: NewAtomicLevelAt(DEBUG), inUTC: true}
	logger.AddAppender(NewWriterAppender(&buf))

	sub := logger.Sublogger("sector")
	sub.Infow("instantiated", "address", "3.2")

	line := buf.String()
	test.That(t, line, test.ShouldContainSubstring, "planet.sector")
	test.That(t, line, test.ShouldContainSubstring, "instantiated")
	test.That(t, line, test.ShouldContainSubstring, `"address": "3.2"`)
	test.That(t, strings.Count(line, "\n"), test.ShouldEqual, 1)
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestAsZap(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(INFO)

	z := logger.AsZap()
	z.Debugw("hidden")
	z.Infow("from zap", "k", 1)
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].Message, test.ShouldEqual, "from zap")
}

func TestGlobal(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)

	logger := NewTestLogger(t)
	ReplaceGlobal(logger)
	test.That(t, Global(), test.ShouldEqual, logger)
}
