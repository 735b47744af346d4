package detect

import "testing"

func mustPage(t *testing.T, rawURL string, html string) *Page {
	t.Helper()
	page, err := NewPage(rawURL, html)
	if err != nil {
		t.Fatalf("build page: %v", err)
	}
	return page
}

func TestGenericPrefersOpenGraphTitle(t *testing.T) {
	page := mustPage(t, "https://stream.example/watch/123", `
<html>
<head>
  <title>Wrong Title | Example Stream</title>
  <meta property="og:title" content="Jujutsu Kaisen Episode 23 - Watch on Example">
  <meta name="description" content="Stream the newest episode.">
</head>
</html>`)

	signal := NewGeneric().Detect(page)
	if signal == nil {
		t.Fatalf("expected signal")
	}
	if signal.Title != "Jujutsu Kaisen" {
		t.Fatalf("expected Jujutsu Kaisen, got %q", signal.Title)
	}
	if signal.Episode != nil {
		t.Fatalf("expected no episode from the document title, got %d", *signal.Episode)
	}
}

func TestGenericMetaLookupByName(t *testing.T) {
	page := mustPage(t, "https://stream.example/", `
<html><head>
  <meta name="title" content="Mushoku Tensei | Example">
  <meta name="description" content="Watch Mushoku Tensei Ep. 4 in HD">
</head></html>`)

	signal := NewGeneric().Detect(page)
	if signal == nil || signal.Title != "Mushoku Tensei" {
		t.Fatalf("expected Mushoku Tensei, got %+v", signal)
	}
	if signal.Episode == nil || *signal.Episode != 4 {
		t.Fatalf("expected episode 4 from description, got %v", signal.Episode)
	}
}

func TestGenericDocumentTitleFallback(t *testing.T) {
	page := mustPage(t, "https://stream.example/show/blue-lock/episode-9", `
<html><head><title>Blue Lock - Season 2 Episode 9 | Example</title></head></html>`)

	signal := NewGeneric().Detect(page)
	if signal == nil || signal.Title != "Blue Lock" {
		t.Fatalf("expected Blue Lock, got %+v", signal)
	}
	if signal.Episode == nil || *signal.Episode != 9 {
		t.Fatalf("expected episode 9, got %v", signal.Episode)
	}
	if signal.SeasonNumber == nil || *signal.SeasonNumber != 2 {
		t.Fatalf("expected season 2, got %v", signal.SeasonNumber)
	}
}

func TestGenericSeasonEpisodeDocumentTitle(t *testing.T) {
	page := mustPage(t, "https://stream.example/watch/4411", `
<html><head><title>Jujutsu Kaisen S2E23 - StreamSite</title></head></html>`)

	signal := NewGeneric().Detect(page)
	if signal == nil || signal.Title != "Jujutsu Kaisen" {
		t.Fatalf("expected Jujutsu Kaisen, got %+v", signal)
	}
	if signal.Episode == nil || *signal.Episode != 23 {
		t.Fatalf("expected episode 23, got %v", signal.Episode)
	}
	if signal.SeasonNumber == nil || *signal.SeasonNumber != 2 {
		t.Fatalf("expected season 2, got %v", signal.SeasonNumber)
	}
}

func TestGenericSeasonEpisodeMetaTitle(t *testing.T) {
	page := mustPage(t, "https://stream.example/watch/77", `
<html><head><meta property="og:title" content="Frieren S01E07"></head></html>`)

	signal := NewGeneric().Detect(page)
	if signal == nil || signal.Title != "Frieren" {
		t.Fatalf("expected Frieren, got %+v", signal)
	}
}

func TestSeasonFromText(t *testing.T) {
	cases := map[string]int{
		"Blue Lock Season 2": 2,
		"Frieren S01E07":     1,
		"Dandadan s2 e3":     2,
	}
	for input, want := range cases {
		got := SeasonFromText(input)
		if got == nil || *got != want {
			t.Fatalf("SeasonFromText(%q) = %v, want %d", input, got, want)
		}
	}
	if got := SeasonFromText("Solo Leveling"); got != nil {
		t.Fatalf("expected no season, got %d", *got)
	}
}

func TestGenericEpisodeFromAddressThenHeadings(t *testing.T) {
	fromPath := mustPage(t, "https://stream.example/v/ep-14", `<html><head><title>Kaiju No. 8</title></head></html>`)
	signal := NewGeneric().Detect(fromPath)
	if signal == nil || signal.Episode == nil || *signal.Episode != 14 {
		t.Fatalf("expected episode 14 from path, got %+v", signal)
	}

	fromHeading := mustPage(t, "https://stream.example/v/abc", `
<html><head><title>Kaiju No. 8</title></head>
<body><h2>Now playing</h2><h3>Episode 5: The Fortitude</h3></body></html>`)
	signal = NewGeneric().Detect(fromHeading)
	if signal == nil || signal.Episode == nil || *signal.Episode != 5 {
		t.Fatalf("expected episode 5 from heading, got %+v", signal)
	}
}

func TestGenericNoSignal(t *testing.T) {
	page := mustPage(t, "https://stream.example/", `<html><body><h1>Episode 3</h1></body></html>`)
	if signal := NewGeneric().Detect(page); signal != nil {
		t.Fatalf("expected nil signal without a title, got %+v", signal)
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	signal := Guard("boom", func() *Signal {
		panic("selector exploded")
	})
	if signal != nil {
		t.Fatalf("expected nil signal after panic")
	}
}

func TestEpisodeFromText(t *testing.T) {
	cases := map[string]int{
		"E1148 - The Lost History": 1148,
		"Episode 23":               23,
		"ep.7":                     7,
		"EP 12 recap":              12,
		"Jujutsu Kaisen S2E23":     23,
		"Frieren S01E07 - Stream":  7,
	}
	for input, want := range cases {
		got := EpisodeFromText(input)
		if got == nil || *got != want {
			t.Fatalf("EpisodeFromText(%q) = %v, want %d", input, got, want)
		}
	}

	for _, input := range []string{"", "Episode 0", "The 100", "no numbers"} {
		if got := EpisodeFromText(input); got != nil {
			t.Fatalf("EpisodeFromText(%q) = %d, want nil", input, *got)
		}
	}
}
