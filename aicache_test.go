package vfs

import "testing"

type countingProvider struct {
	calls int
}

func (p *countingProvider) Label() string { return "counting" }

func (p *countingProvider) Ask(prompt string) (string, error) {
	p.calls++
	return "answer:" + prompt, nil
}

func TestAICacheMemHit(t *testing.T) {
	p := &countingProvider{}
	c := NewAICache(p, 0)
	c.cacheDir = t.TempDir()

	resp1, err := c.Ask("hello")
	if err != nil {
		t.Fatal(err)
	}
	resp2, err := c.Ask("hello")
	if err != nil {
		t.Fatal(err)
	}
	if resp1 != resp2 {
		t.Fatalf("expected identical cached response, got %q vs %q", resp1, resp2)
	}
	if p.calls != 1 {
		t.Fatalf("expected provider to be called once, got %d", p.calls)
	}
}

func TestAICacheDiskHitAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	p := &countingProvider{}
	c1 := NewAICache(p, 0)
	c1.cacheDir = dir
	if _, err := c1.Ask("persisted"); err != nil {
		t.Fatal(err)
	}

	c2 := NewAICache(p, 0)
	c2.cacheDir = dir
	if _, err := c2.Ask("persisted"); err != nil {
		t.Fatal(err)
	}
	if p.calls != 1 {
		t.Fatalf("expected disk cache to short-circuit the second instance's provider call, got %d calls", p.calls)
	}
}

func TestAICacheNoProvider(t *testing.T) {
	c := NewAICache(nil, 0)
	c.cacheDir = t.TempDir()
	if _, err := c.Ask("hi"); err == nil {
		t.Fatal("expected an error with no provider configured")
	}
}

func TestEchoProviderLabel(t *testing.T) {
	if (EchoProvider{}).Label() != "echo" {
		t.Fatal("expected default echo label")
	}
	if (EchoProvider{LabelName: "custom"}).Label() != "custom" {
		t.Fatal("expected custom label to override default")
	}
}
