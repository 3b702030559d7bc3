package comms

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestCommandHandler_Responses(t *testing.T) {
	c := NewCommandHandler(&recordingMessenger{}, "gcibot", nil)
	def := DefaultReplies()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"colon", "gcibot: ping", []string{"alice, pong"}},
		{"comma", "gcibot, ping", []string{"alice, pong"}},
		{"space", "gcibot ping", []string{"alice, pong"}},
		{"case insensitive keyword", "gcibot: PING", []string{"alice, pong"}},
		{"case insensitive nick", "GCIBot: ping", []string{"alice, pong"}},
		{"not addressed", "hello ping", nil},
		{"nick not at start", "hey gcibot: ping", nil},
		{"no delimiter", "gcibotping", nil},
		{"longer nick", "gcibot2: ping", nil},
		{"nick only", "gcibot", nil},
		{"unknown keyword", "gcibot: dance", nil},
		{
			name: "several keywords in fixed order",
			text: "gcibot: timeline and rules please, also ping",
			want: []string{"alice, pong", "alice, " + def.Rules, "alice, " + def.Timeline},
		},
		{
			name: "keyword as substring",
			text: "gcibot: where is the guidebook?",
			want: []string{"alice, " + def.Guide},
		},
		{
			name: "every keyword",
			text: "gcibot: ping about rules guide faq timeline",
			want: []string{
				"alice, pong",
				"alice, " + def.About,
				"alice, " + def.Rules,
				"alice, " + def.Guide,
				"alice, " + def.FAQ,
				"alice, " + def.Timeline,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Responses("alice", tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Responses(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCommandHandler_ReplyOverrides(t *testing.T) {
	c := NewCommandHandler(&recordingMessenger{}, "gcibot", &Replies{FAQ: "see the wiki"})

	got := c.Responses("bob", "gcibot: faq about")
	want := []string{"bob, " + DefaultReplies().About, "bob, see the wiki"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Responses() = %q, want %q", got, want)
	}
}

func TestCommandHandler_HandleCommand(t *testing.T) {
	m := &recordingMessenger{}
	c := NewCommandHandler(m, "gcibot", nil)

	n := c.HandleCommand(context.Background(), "#gci", "carol", "gcibot: ping")
	if n != 1 {
		t.Fatalf("HandleCommand sent %d, want 1", n)
	}

	got := m.messages()
	if got[0].Room != "#gci" || got[0].Text != "carol, pong" {
		t.Errorf("sent = %v", got)
	}
}

func TestDefaultReplies(t *testing.T) {
	def := DefaultReplies()
	for name, v := range map[string]string{
		"about": def.About, "rules": def.Rules, "guide": def.Guide, "faq": def.FAQ, "timeline": def.Timeline,
	} {
		if strings.TrimSpace(v) == "" {
			t.Errorf("default %s reply is empty", name)
		}
	}
}
