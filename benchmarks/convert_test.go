package benchmarks

import (
	"testing"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/blockinfo"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/config"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/flowchart"
)

func benchmarkConvert(b *testing.B, n int) {
	data := buildProject(n)
	conv := flowchart.New()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conv.ConvertJSON(data); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConvert_10 converts a 10-block project.
func BenchmarkConvert_10(b *testing.B) { benchmarkConvert(b, 10) }

// BenchmarkConvert_100 converts a 100-block project.
func BenchmarkConvert_100(b *testing.B) { benchmarkConvert(b, 100) }

// BenchmarkConvert_1000 converts a 1000-block project.
func BenchmarkConvert_1000(b *testing.B) { benchmarkConvert(b, 1000) }

// BenchmarkConvert_10000 converts a 10000-block project.
func BenchmarkConvert_10000(b *testing.B) { benchmarkConvert(b, 10_000) }

// BenchmarkConvert_NoiseFilter measures the cost of line filtering.
func BenchmarkConvert_NoiseFilter(b *testing.B) {
	data := buildProject(100)
	conv := flowchart.New(flowchart.WithNoiseLines(config.DefaultNoiseLines...))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = conv.ConvertJSON(data)
	}
}

// BenchmarkDecode isolates JSON decoding from rendering.
func BenchmarkDecode(b *testing.B) {
	data := buildProject(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = flowchart.Decode(data)
	}
}

// BenchmarkBlockInfoLookup scans a rendered flowchart for known blocks.
func BenchmarkBlockInfoLookup(b *testing.B) {
	lines, err := flowchart.ConvertJSON(buildProject(100))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = blockinfo.Lookup(lines)
	}
}

// BenchmarkParallelConvert shares one converter between goroutines.
func BenchmarkParallelConvert(b *testing.B) {
	data := buildProject(100)
	conv := flowchart.New()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = conv.ConvertJSON(data)
		}
	})
}
