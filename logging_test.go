package apicall_test

import (
	"context"
	"github.com/ThalesGroup/apicall"
	"github.com/ThalesGroup/apicall/apicalltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"net/http"
	"testing"
)

func TestLogHooks(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.RespondJSON(200, article{ID: 42, Title: "T"}))
	reg.Register("missing.test", apicalltest.Respond(404, nil, nil))
	reg.Register("garbled.test", apicalltest.Respond(200, []byte(`{"id":`), nil))

	c := apicalltest.NewClient(reg, apicall.WithLogger(zap.New(core)))

	ep := apicall.MustEndpoint[article](apicall.POST, "https://api.test", "articles/42",
		apicall.JSONBody(article{Title: "T"}),
	)
	_, err := apicall.Execute(context.Background(), c, ep)
	require.NoError(t, err)

	entries := logs.TakeAll()
	require.Len(t, entries, 2)

	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "https://api.test/articles/42", fields["url"])
	assert.Contains(t, fields["body"], `"title": "T"`)

	assert.Equal(t, "response", entries[1].Message)
	fields = entries[1].ContextMap()
	assert.EqualValues(t, 200, fields["status"])
	assert.Contains(t, fields["body"], `"id": 42`)

	_, err = apicall.Execute(context.Background(), c, apicall.MustEndpoint[article](apicall.GET, "https://missing.test", "x"))
	require.Error(t, err)

	failed := logs.FilterMessage("call failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, "request failed", failed[0].ContextMap()["kind"])
	assert.Equal(t, "the request failed with status code 404", failed[0].ContextMap()["error"])

	_, err = apicall.Execute(context.Background(), c, apicall.MustEndpoint[article](apicall.GET, "https://garbled.test", "x"))
	require.Error(t, err)

	failed = logs.FilterMessage("call failed").All()
	require.Len(t, failed, 2)
	assert.Equal(t, zapcore.ErrorLevel, failed[1].Level)
	assert.Equal(t, "decoding failed", failed[1].ContextMap()["kind"])
}

func TestLogHooks_requestFailedBelowErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Respond(404, nil, nil))
	c := apicalltest.NewClient(reg, apicall.WithLogger(zap.New(core)))

	_, err := apicall.Execute(context.Background(), c, articleEndpoint(1))
	assert.Equal(t, apicall.RequestFailed, apicall.KindOf(err))
	assert.Zero(t, logs.Len())
}

func TestLogHooks_infoLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Respond(200, []byte(`{}`), nil))
	c := apicalltest.NewClient(reg, apicall.LogHooks(zap.New(core)))

	_, err := apicall.Execute(context.Background(), c, articleEndpoint(1))
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestLogHooks_nilLogger(t *testing.T) {
	c := &apicall.Client{Doer: apicall.DoerFunc(func(*http.Request) (*http.Response, error) {
		return nil, nil
	})}
	require.NoError(t, c.Apply(apicall.WithLogger(nil)))

	_, err := apicall.Execute(context.Background(), c, articleEndpoint(1))
	assert.Equal(t, apicall.Unknown, apicall.KindOf(err))
}
