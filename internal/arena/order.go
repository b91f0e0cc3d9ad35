package arena

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
)

// PlayerOrder decides which built agent moves first.
type PlayerOrder string

const (
	OrderInList        PlayerOrder = "OrderInList"
	ReverseOrderInList PlayerOrder = "ReverseOrderInList"
	Ascending          PlayerOrder = "Ascending"
	Descending         PlayerOrder = "Descending"
	Random             PlayerOrder = "Random"
)

var orders = []PlayerOrder{OrderInList, ReverseOrderInList, Ascending, Descending, Random}

// ParseOrder matches case-insensitively. An empty value is OrderInList.
func ParseOrder(value string) (PlayerOrder, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OrderInList, nil
	}

	for _, order := range orders {
		if strings.EqualFold(trimmed, string(order)) {
			return order, nil
		}
	}

	return "", fmt.Errorf("%w: %s", apperror.ErrUnknownOrder, value)
}

func (that *PlayerOrder) UnmarshalText(text []byte) error {
	order, err := ParseOrder(string(text))
	if err != nil {
		return err
	}

	*that = order

	return nil
}

// Apply returns the agents in play order. Ascending and Descending sort by name.
func (that PlayerOrder) Apply(agents []agent.Agent) []agent.Agent {
	ordered := slices.Clone(agents)

	switch that {
	case ReverseOrderInList:
		slices.Reverse(ordered)
	case Ascending:
		slices.SortStableFunc(ordered, func(a, b agent.Agent) int {
			return strings.Compare(a.Name(), b.Name())
		})
	case Descending:
		slices.SortStableFunc(ordered, func(a, b agent.Agent) int {
			return strings.Compare(b.Name(), a.Name())
		})
	case Random:
		rand.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	case OrderInList:
	}

	return ordered
}
