package rules

import "testing"

func TestExpand(t *testing.T) {
	tc := TemplateContext{
		UserMention:    "<@123>",
		Username:       "alice",
		ServerName:     "My Server",
		ChannelMention: "<#456>",
	}

	got := Expand("Hi {user}! Welcome to {server}, see {channel}. ({username})", tc)
	want := "Hi <@123>! Welcome to My Server, see <#456>. (alice)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandLeavesUnknownTokens(t *testing.T) {
	got := Expand("{user} {unknown}", TemplateContext{UserMention: "<@1>"})
	if got != "<@1> {unknown}" {
		t.Errorf("got %q", got)
	}
}

func TestExpandRepeatedTokens(t *testing.T) {
	got := Expand("{user} and {user}", TemplateContext{UserMention: "<@1>"})
	if got != "<@1> and <@1>" {
		t.Errorf("got %q", got)
	}
}
