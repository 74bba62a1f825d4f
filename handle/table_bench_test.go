package handle

import "testing"

func BenchmarkMakeClose(b *testing.B) {
	table := New(nil)
	obj := newTestObject(nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, err := table.Make(obj)
		if err != nil {
			b.Fatal(err)
		}
		if err := table.Close(h); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkQuery_CacheHit(b *testing.B) {
	table := New(nil)
	obj := newTestObject(map[*Type]any{typeA: &struct{}{}})
	h, err := table.Make(obj)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := table.Query(h, typeA); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := table.Query(h, typeA); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDup(b *testing.B) {
	table := New(nil)
	obj := newTestObject(nil)
	h, err := table.Make(obj)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d, err := table.Dup(h)
		if err != nil {
			b.Fatal(err)
		}
		if err := table.Close(d); err != nil {
			b.Fatal(err)
		}
	}
}
