package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/peterholko-pingidentity/action-agent/internal/domain/run"
)

func postEnvelope(t *testing.T, h *EnvelopeHandler, body string) (*httptest.ResponseRecorder, envelopeResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Handle(rr, req)

	var resp envelopeResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rr.Body.String())
	}
	return rr, resp
}

func TestEnvelope_Success(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{answer: "Created user a@b.com."}
	recorder := newTestRecorder(t)
	h := NewEnvelopeHandler(agent, recorder, time.Minute)

	rr, resp := postEnvelope(t, h, `{
		"messageVersion": "1.0",
		"inputText": "create a user",
		"sessionId": "s-1",
		"actionGroup": "identity",
		"function": "create_user",
		"parameters": [
			{"name": "email", "type": "string", "value": "a@b.com"},
			{"name": "admin", "type": "boolean", "value": "true"}
		]
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp.MessageVersion != "1.0" {
		t.Errorf("messageVersion = %q", resp.MessageVersion)
	}
	if resp.Response.ActionGroup != "identity" || resp.Response.Function != "create_user" {
		t.Errorf("actionGroup/function = %q/%q", resp.Response.ActionGroup, resp.Response.Function)
	}
	if got := resp.Response.FunctionResponse.ResponseBody.Text.Body; got != "Created user a@b.com." {
		t.Errorf("body = %q", got)
	}

	// Parameter values are JSON-decoded best-effort: "true" becomes a bool.
	input := agent.inputs[0]
	if !strings.Contains(input, "admin: true") || !strings.Contains(input, "email: a@b.com") {
		t.Errorf("agent input = %q", input)
	}
	if !strings.Contains(input, "Function: create_user") {
		t.Errorf("agent input should name the function, got %q", input)
	}

	// The envelope's session id reaches the run record.
	runs, _, err := recorder.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if runs[0].SessionID != "s-1" || runs[0].Source != run.SourceEnvelope {
		t.Errorf("session/source = %q/%q", runs[0].SessionID, runs[0].Source)
	}
}

func TestEnvelope_MissingFunctionDefaultsToUnknown(t *testing.T) {
	t.Parallel()

	h := NewEnvelopeHandler(&fakeAgent{answer: "ok"}, newTestRecorder(t), 0)

	rr, resp := postEnvelope(t, h, `{"inputText": "do something"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if resp.Response.Function != "unknown" {
		t.Errorf("function = %q, want unknown", resp.Response.Function)
	}
	if resp.MessageVersion != envelopeMessageVersion {
		t.Errorf("messageVersion = %q", resp.MessageVersion)
	}
}

func TestEnvelope_MalformedBodyStillShapedAnd200(t *testing.T) {
	t.Parallel()

	h := NewEnvelopeHandler(&fakeAgent{}, newTestRecorder(t), 0)

	rr, resp := postEnvelope(t, h, `{not json`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if resp.Response.Function != "unknown" {
		t.Errorf("function = %q, want unknown", resp.Response.Function)
	}
	body := resp.Response.FunctionResponse.ResponseBody.Text.Body
	if !strings.Contains(body, "Error:") {
		t.Errorf("body should carry the error text, got %q", body)
	}
}

func TestEnvelope_AgentFailureStillShapedAnd200(t *testing.T) {
	t.Parallel()

	recorder := newTestRecorder(t)
	h := NewEnvelopeHandler(&fakeAgent{err: errors.New("model offline")}, recorder, 0)

	rr, resp := postEnvelope(t, h, `{"inputText": "create a user", "function": "create_user"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := resp.Response.FunctionResponse.ResponseBody.Text.Body
	if !strings.Contains(body, "model offline") {
		t.Errorf("body = %q", body)
	}

	runs, _, err := recorder.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if runs[0].Status != run.StatusFailed {
		t.Errorf("run status = %q, want failed", runs[0].Status)
	}
}

func TestDecodeEnvelopeParameters(t *testing.T) {
	t.Parallel()

	got := decodeEnvelopeParameters([]envelopeParameter{
		{Name: "email", Value: "a@b.com"},
		{Name: "count", Value: "3"},
		{Name: "tags", Value: `["a","b"]`},
		{Name: "", Value: "dropped"},
	})

	if got["email"] != "a@b.com" {
		t.Errorf("email = %v", got["email"])
	}
	if got["count"] != float64(3) {
		t.Errorf("count = %v (%T), want 3", got["count"], got["count"])
	}
	if tags, ok := got["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf("tags = %v", got["tags"])
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3 (nameless parameter dropped)", len(got))
	}
}
