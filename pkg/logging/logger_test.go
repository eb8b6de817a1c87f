package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesStoreRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "events.log")
	var console bytes.Buffer

	logger, err := New(Options{FilePath: path, Console: &console, NoColor: true})
	require.NoError(t, err)

	gw := logger.Component("ModelGateway").WithRunID("run-1")
	gw.Info("calling %s", "gemini")
	gw.Success("done")
	gw.Debug("hidden from console")
	require.NoError(t, logger.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		records = append(records, r)
	}
	require.Len(t, records, 3)
	assert.Equal(t, LevelInfo, records[0].Level)
	assert.Equal(t, "ModelGateway", records[0].Source)
	assert.Equal(t, "calling gemini", records[0].Message)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, LevelSuccess, records[1].Level)
	assert.Equal(t, LevelDebug, records[2].Level)

	out := console.String()
	assert.Contains(t, out, "[INFO] ModelGateway: calling gemini")
	assert.Contains(t, out, "[SUCCESS] ModelGateway: done")
	assert.NotContains(t, out, "hidden from console")
}

func TestLoggerDebugConsole(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Console: &console, Debug: true, NoColor: true})
	require.NoError(t, err)

	logger.Component("ArtifactParser").Debug("parsed %d files", 2)
	assert.Contains(t, console.String(), "[DEBUG] ArtifactParser: parsed 2 files")
}

func TestLoggerLevelMapping(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	logger := NewWithLogrus(base).Component("Deployer")

	logger.Warning("name missing")
	logger.Error("boom")
	logger.Success("ok")

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, logrus.InfoLevel, entries[2].Level)
	assert.Equal(t, "SUCCESS", entries[2].Data[fieldLevel])
	assert.Equal(t, "Deployer", entries[2].Data[fieldComponent])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Info("nothing")
	assert.NoError(t, logger.Close())
}
