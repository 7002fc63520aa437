package report

import (
	"strings"
	"testing"
)

const sampleScripts = `# Generated Scripts

Intro text that is not a script block.

---

## Script 1

**Platform:** TikTok
**Format:** Talking head
**Hook:** "You've been using this wrong."
**CTA:** Comment 'GUIDE' for the link
**Why It Will Work:** Pattern interrupt plus curiosity gap

Body of the script goes here.

---

## Not a script

This block has no platform marker and must be skipped.

---

**Platform:** Instagram Reels
**Hook:** Before/after in the first second
`

func TestParseScripts(t *testing.T) {
	scripts := ParseScripts(sampleScripts)
	if len(scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(scripts))
	}

	first := scripts[0]
	if first.Platform != "TikTok" {
		t.Errorf("unexpected platform %q", first.Platform)
	}
	if first.Format != "Talking head" {
		t.Errorf("unexpected format %q", first.Format)
	}
	if first.Hook != `"You've been using this wrong."` {
		t.Errorf("unexpected hook %q", first.Hook)
	}
	if first.CTA != "Comment 'GUIDE' for the link" {
		t.Errorf("unexpected cta %q", first.CTA)
	}
	if first.Why != "Pattern interrupt plus curiosity gap" {
		t.Errorf("unexpected why %q", first.Why)
	}
	if !strings.Contains(first.Raw, "Body of the script goes here.") {
		t.Errorf("raw block should keep the body: %q", first.Raw)
	}

	second := scripts[1]
	if second.Platform != "Instagram Reels" {
		t.Errorf("unexpected platform %q", second.Platform)
	}
	if second.Format != "" || second.CTA != "" || second.Why != "" {
		t.Errorf("absent labels must default to empty: %+v", second)
	}
}

func TestParseScriptsNoMarkers(t *testing.T) {
	in := "Some report\n---\nwith rules\n---\nbut no platform labels"
	if got := ParseScripts(in); len(got) != 0 {
		t.Errorf("expected no scripts, got %d", len(got))
	}
}

func TestParseScriptsEmpty(t *testing.T) {
	if got := ParseScripts(""); len(got) != 0 {
		t.Errorf("expected no scripts for empty input, got %d", len(got))
	}
}

func TestParseScriptsRuleNeedsOwnLine(t *testing.T) {
	in := "**Platform:** YouTube\nUses --- inline, which is not a rule."
	scripts := ParseScripts(in)
	if len(scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(scripts))
	}
	if scripts[0].Platform != "YouTube" {
		t.Errorf("unexpected platform %q", scripts[0].Platform)
	}
}
