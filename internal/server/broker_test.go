package server

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEventPayloads(t *testing.T) {
	var got []Event
	p := eventPresenter(func(e Event) { got = append(got, e) })

	p.RenderRound(1, 5, "Houston", "Purdue")
	p.RenderFeedback(false, "Purdue")
	p.RenderSummary(0, 5)

	tests := []struct {
		name    string
		want    []string
		notWant []string
	}{
		{"round", []string{`"type":"round"`, `"options":["Houston","Purdue"]`}, []string{`"score"`, `"correct"`}},
		{"wrong feedback", []string{`"type":"feedback"`, `"correct":false`, `"correctName":"Purdue"`}, []string{`"score"`}},
		{"zero summary", []string{`"type":"summary"`, `"score":0`, `"total":5`}, []string{`"correct"`}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(got[i])
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			body := string(data)
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("%s missing %s", body, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Errorf("%s should not contain %s", body, w)
				}
			}
		})
	}
}

func TestBrokerPublish(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")
	other := b.Subscribe("s2")
	defer b.Unsubscribe("s2", other)

	b.Presenter("s1").RenderSummary(3, 5)

	select {
	case data := <-ch:
		if !strings.Contains(string(data), `"score":3`) {
			t.Errorf("event = %s", data)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	select {
	case data := <-other:
		t.Errorf("event leaked to another session: %s", data)
	default:
	}

	b.Unsubscribe("s1", ch)
	if _, ok := b.subs["s1"]; ok {
		t.Error("empty subscriber set not removed")
	}
}
