package db

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	userIDNode int64 = iota
	productIDNode
	ingredientIDNode
	orderIDNode
	favoriteIDNode
)

var (
	userIDGen       = mustSnowflake(userIDNode)
	productIDGen    = mustSnowflake(productIDNode)
	ingredientIDGen = mustSnowflake(ingredientIDNode)
	orderIDGen      = mustSnowflake(orderIDNode)
	favoriteIDGen   = mustSnowflake(favoriteIDNode)
)

func mustSnowflake(node int64) *snowflake.Node {
	n, err := snowflake.NewNode(node)
	if err != nil {
		panic(err)
	}

	return n
}

// NewZeroID returns the smallest ID that could have been generated at the
// given time.
func NewZeroID(t time.Time) int64 {
	epoch := t.UnixNano() / int64(time.Millisecond)
	epoch -= snowflake.Epoch

	return epoch << 22
}

// IDTime returns the time the ID was generated at.
func IDTime(id int64) time.Time {
	return time.Unix(0, snowflake.ParseInt64(id).Time()*int64(time.Millisecond))
}
