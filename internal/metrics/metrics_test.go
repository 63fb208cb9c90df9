package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestRegister(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if len(m.Collectors()) != 6 {
		t.Errorf("expected 6 collectors, got %d", len(m.Collectors()))
	}
}

func TestObserveSearch(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	m.ObserveSearch(BackendMemory, 0.002, 4, nil)
	m.ObserveSearch(BackendMemory, 0.003, 0, errors.New("boom"))

	families := gather(t, reg)
	total := families[MetricSearchRequestsTotal]
	if total == nil {
		t.Fatal("search counter not gathered")
	}
	counts := map[string]float64{}
	for _, metric := range total.GetMetric() {
		for _, l := range metric.GetLabel() {
			if l.GetName() == "status" {
				counts[l.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	if counts[StatusSuccess] != 1 || counts[StatusFailure] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}

	results := families[MetricSearchResults]
	if results == nil || results.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Error("expected exactly one results observation")
	}
}

func TestSetCorpus(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	m.SetCorpus(42, 1000)

	families := gather(t, reg)
	if got := families[MetricCorpusArticles].GetMetric()[0].GetGauge().GetValue(); got != 42 {
		t.Errorf("expected 42 articles, got %v", got)
	}
	if got := families[MetricIndexTokens].GetMetric()[0].GetGauge().GetValue(); got != 1000 {
		t.Errorf("expected 1000 tokens, got %v", got)
	}
}

func TestIncFeedFetch(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	m.IncFeedFetch("Go Blog", StatusSuccess)
	m.IncFeedFetch("Go Blog", StatusSuccess)

	f := gather(t, reg)[MetricFeedFetchesTotal]
	if f == nil || f.GetMetric()[0].GetCounter().GetValue() != 2 {
		t.Error("expected 2 feed fetches recorded")
	}
}
