package notify

import (
	"bytes"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	rec := &Recorder{}
	res := Send(rec, "t", "b")
	assert.True(t, res.Delivered)
	assert.NoError(t, res.Err)
	assert.Equal(t, []Message{{Title: "t", Body: "b"}}, rec.Messages())

	rec.Fail = errors.New("boom")
	res = Send(rec, "t", "b")
	assert.False(t, res.Delivered)
	assert.EqualError(t, res.Err, "boom")

	assert.False(t, Send(nil, "t", "b").Delivered)
}

func TestMulti_TriesEverySink(t *testing.T) {
	bad := &Recorder{Fail: errors.New("down")}
	good := &Recorder{}
	err := Multi{bad, nil, good}.Notify("t", "b")
	require.Error(t, err)
	assert.Len(t, good.Messages(), 1)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&log.JSONFormatter{})

	require.NoError(t, LogSink{Entry: log.NewEntry(logger)}.Notify("Milestone", "25%"))
	assert.Contains(t, buf.String(), `"title":"Milestone"`)
	assert.Contains(t, buf.String(), `"msg":"25%"`)
}

func TestCommandSink_Args(t *testing.T) {
	s := NewCommandSink([]string{"notify-send", "{title}", "got {body}"})
	assert.Equal(t, []string{"notify-send", "T", "got B"}, s.Args("T", "B"))
	assert.Nil(t, NewCommandSink(nil))
}

func TestCommandSink_MissingBinary(t *testing.T) {
	s := NewCommandSink([]string{"fitrack-no-such-notifier-binary", "{title}"})
	assert.Error(t, s.Notify("t", "b"))

	var empty *CommandSink
	assert.Error(t, empty.Notify("t", "b"))
}
