package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса

var inlineSeeds = []string{
	"",
	"print(1);",
	"int v; v = 10; print(v);",
	"ref int a; new(a, 22); fork { wH(a, 30); print(rH(a)); } print(rH(a));",
	"int i; while (i < 3) { i = i + 1; } if (i == 3) { print(i); } else { nop; }",
	"string f; f = \"test.in\"; openRFile(f); int c; readFile(f, c); closeRFile(f);",
	"{ { { } } }",
	"x = -9223372036854775808;",
	"print(\"unterminated",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	matches, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.fv"))
	if err != nil {
		return
	}
	for _, path := range matches {
		// #nosec G304 -- path comes from the repository examples directory
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clampSeed(src))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}

func truncateForLog(input []byte, n int) []byte {
	if len(input) <= n {
		return input
	}
	return input[:n]
}
