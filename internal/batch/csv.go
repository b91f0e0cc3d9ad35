// Package batch reads match cases from CSV and plays them one after another.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/arena"
	"github.com/rocketscienceinc/ai-arena/internal/usecase"
)

const (
	defaultTemperature = 0.7
	defaultRepetitions = 1
)

// Case is one CSV row.
type Case struct {
	Game        string
	Agents      []agent.Config
	Repetitions uint32
	Description string
}

// Request is the match a single repetition of the case plays.
func (that Case) Request() usecase.MatchRequest {
	return usecase.MatchRequest{
		Game:        that.Game,
		Description: that.Description,
		Agents:      that.Agents,
	}
}

type row struct {
	headers []string
	fields  []string
}

func (that row) index(name string) int {
	for i, header := range that.headers {
		if strings.EqualFold(strings.TrimSpace(header), name) {
			return i
		}
	}

	return -1
}

// field needs the header to exist; a short record reads as empty.
func (that row) field(name string) (string, error) {
	i := that.index(name)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", apperror.ErrMissingField, name)
	}

	if i >= len(that.fields) {
		return "", nil
	}

	return strings.TrimSpace(that.fields[i]), nil
}

func (that row) optional(name string) string {
	value, err := that.field(name)
	if err != nil {
		return ""
	}

	return value
}

func (that row) float(name string, fallback float64) float64 {
	value, err := strconv.ParseFloat(that.optional(name), 64)
	if err != nil {
		return fallback
	}

	return value
}

// unsigned parses an integer of bitSize bits. Out of range values fall back too.
func (that row) unsigned(name string, bitSize int, fallback uint64) uint64 {
	value, err := strconv.ParseUint(that.optional(name), 10, bitSize)
	if err != nil {
		return fallback
	}

	return value
}

func (that row) agent(prefix string) (agent.Config, error) {
	kindName, err := that.field(prefix + "_kind")
	if err != nil {
		return agent.Config{}, err
	}

	kind, err := agent.ParseKind(kindName)
	if err != nil {
		return agent.Config{}, err
	}

	model, err := that.field(prefix + "_model")
	if err != nil {
		return agent.Config{}, err
	}

	seed := that.unsigned(prefix+"_seed", 64, 0)

	return agent.Config{
		Kind:          kind,
		Model:         model,
		Temperature:   that.float(prefix+"_temp", defaultTemperature),
		Seed:          &seed,
		SecretProfile: that.optional(prefix + "_secret_profile"),
	}, nil
}

func (that row) toCase() (Case, error) {
	game, err := that.field("game_name")
	if err != nil {
		return Case{}, err
	}

	if _, err = arena.New(game); err != nil {
		return Case{}, err
	}

	one, err := that.agent("agent_one")
	if err != nil {
		return Case{}, err
	}

	two, err := that.agent("agent_two")
	if err != nil {
		return Case{}, err
	}

	return Case{
		Game:        game,
		Agents:      []agent.Config{one, two},
		Repetitions: uint32(that.unsigned("repetitions", 32, defaultRepetitions)),
		Description: that.optional("description"),
	}, nil
}

// Read parses every row. Headers match case-insensitively; unparsable numbers
// fall back to their defaults. Reported row numbers count the header as row 1.
func Read(r io.Reader) ([]Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read CSV headers: %w", apperror.ErrInvalidTestCase)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	cases := make([]Case, 0)
	for rowNum := 0; ; rowNum++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum+2, err)
		}

		testCase, err := row{headers: headers, fields: fields}.toCase()
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", rowNum+2, err)
		}

		cases = append(cases, testCase)
	}

	return cases, nil
}

func ReadFile(path string) ([]Case, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return Read(file)
}
