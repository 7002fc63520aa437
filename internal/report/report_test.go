package report

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestHashtagsDedupAndCase(t *testing.T) {
	got := Hashtags("Check out #DealAlert and #dealalert2 today")
	want := []string{"#DealAlert", "#dealalert2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestHashtagsExactDuplicate(t *testing.T) {
	got := Hashtags("#Gear #Gear #gear")
	want := []string{"#Gear", "#gear"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestHashtagsMustStartWithLetter(t *testing.T) {
	got := Hashtags("#1store is not a tag but #store1 is")
	want := []string{"#store1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestHashtagsCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "#tag%d ", i)
	}
	got := Hashtags(b.String())
	if len(got) != 25 {
		t.Errorf("expected 25 hashtags, got %d", len(got))
	}
	if got[0] != "#tag0" || got[24] != "#tag24" {
		t.Errorf("expected document order, got first=%s last=%s", got[0], got[24])
	}
}

func TestHashtagsPure(t *testing.T) {
	in := "mix of #Alpha #beta #Alpha text"
	first := Hashtags(in)
	second := Hashtags(in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical output on identical input: %v vs %v", first, second)
	}
}

func TestCompetitors(t *testing.T) {
	got := Competitors("1. **Acme Corp**\n2. **Globex**")
	want := []string{"Acme Corp", "Globex"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCompetitorsIgnoresPartialBold(t *testing.T) {
	got := Competitors("1. **Acme Corp** (market leader)\n2. **Globex**")
	want := []string{"Globex"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCompetitorsCap(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "%d. **Company %d**\n", i, i)
	}
	if got := Competitors(b.String()); len(got) != 8 {
		t.Errorf("expected 8 competitors, got %d", len(got))
	}
}

func TestConcepts(t *testing.T) {
	in := "1. **\"morning routine glow-up\"**\n2. **\"is it worth it\"**"
	got := Concepts(in)
	want := []string{"morning routine glow-up", "is it worth it"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestConceptsNotMatchedAsCompetitors(t *testing.T) {
	in := "1. **\"quoted concept\"**\n2. **Plain Competitor**"
	if got := Competitors(in); !reflect.DeepEqual(got, []string{"Plain Competitor"}) {
		t.Errorf("competitor match leaked into concepts: %v", got)
	}
	if got := Concepts(in); !reflect.DeepEqual(got, []string{"quoted concept"}) {
		t.Errorf("concept extraction wrong: %v", got)
	}
}

func TestCommentThemes(t *testing.T) {
	in := strings.Join([]string{
		"#### Desire",
		`- "I need this in my life"`,
		`- "adding to cart immediately"`,
		"",
		"#### Objection",
		`- "too expensive for what it is"`,
		"",
		"#### Question",
		"no quoted lines here",
		"",
		"### Next Section",
	}, "\n")

	got := CommentThemes(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 themes, got %d: %v", len(got), got)
	}
	if len(got["Desire"]) != 2 || got["Desire"][0] != "I need this in my life" {
		t.Errorf("unexpected Desire comments: %v", got["Desire"])
	}
	if len(got["Objection"]) != 1 {
		t.Errorf("unexpected Objection comments: %v", got["Objection"])
	}
	if _, ok := got["Question"]; ok {
		t.Error("theme with zero comments must be omitted")
	}
}

func TestCommentThemesStopAtNextHeading(t *testing.T) {
	in := strings.Join([]string{
		"#### Surprise",
		`- "did not expect that finish"`,
		"## Conclusion",
		`- "this quote belongs to another section"`,
	}, "\n")

	got := CommentThemes(in)
	if len(got["Surprise"]) != 1 {
		t.Errorf("comments beyond the next heading leaked in: %v", got["Surprise"])
	}
}

func TestAvatars(t *testing.T) {
	in := strings.Join([]string{
		"1. **Name:** Sarah, the busy parent",
		"   - **Demographics:** 28-40, suburban, dual income",
		"2. **Name:** Theo the tinkerer",
		"   - **Demographics:** 18-25, urban, student",
	}, "\n")

	got := Avatars(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 avatars, got %d", len(got))
	}
	if got[0].Name != "Sarah, the busy parent" {
		t.Errorf("unexpected name %q", got[0].Name)
	}
	if got[1].Demographics != "18-25, urban, student" {
		t.Errorf("unexpected demographics %q", got[1].Demographics)
	}
}

func TestAvatarsRequireDemographicsLine(t *testing.T) {
	in := "1. **Name:** Orphaned avatar\n\nNo demographics follow."
	if got := Avatars(in); len(got) != 0 {
		t.Errorf("expected no avatars without demographics line, got %v", got)
	}
}

func TestExtractorsEmptyInput(t *testing.T) {
	if got := Hashtags(""); len(got) != 0 {
		t.Errorf("Hashtags(\"\") = %v", got)
	}
	if got := Competitors(""); len(got) != 0 {
		t.Errorf("Competitors(\"\") = %v", got)
	}
	if got := Concepts(""); len(got) != 0 {
		t.Errorf("Concepts(\"\") = %v", got)
	}
	if got := CommentThemes(""); len(got) != 0 {
		t.Errorf("CommentThemes(\"\") = %v", got)
	}
	if got := Avatars(""); len(got) != 0 {
		t.Errorf("Avatars(\"\") = %v", got)
	}
}
