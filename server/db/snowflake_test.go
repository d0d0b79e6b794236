package db

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
)

func TestSnowflake(t *testing.T) {
	var now = time.Now()

	id := NewZeroID(now)

	s := snowflake.ParseInt64(id).Time()
	m := now.UnixNano() / int64(time.Millisecond)

	if s != m {
		t.Fatalf("Unequal time: %d != %d", s, m)
	}

	if d := IDTime(id); d.UnixNano()/int64(time.Millisecond) != m {
		t.Fatalf("Unequal IDTime: %v != %d", d, m)
	}
}

func TestSnowflakeNodes(t *testing.T) {
	var gens = []*snowflake.Node{
		userIDGen, productIDGen, ingredientIDGen, orderIDGen, favoriteIDGen,
	}

	var seen = map[int64]struct{}{}

	for _, gen := range gens {
		id := gen.Generate().Int64()
		if _, ok := seen[id]; ok {
			t.Fatal("Duplicate ID across nodes:", id)
		}
		seen[id] = struct{}{}
	}
}
