// Package agenttest provides deterministic agents for game tests.
package agenttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

// Response configures one turn in a scripted sequence.
type Response struct {
	Move        any
	Diagnostics string
	Err         error
}

// Move is a shortcut for a successful scripted response.
func Move(move any) Response {
	return Response{Move: move}
}

// Fail is a shortcut for a scripted agent failure.
func Fail(err error) Response {
	return Response{Err: err}
}

// Scripted answers turns from a fixed list and keeps every request it saw.
type Scripted struct {
	name string

	mu        sync.Mutex
	index     int
	responses []Response
	requests  []entity.MoveRequest
}

var _ agent.Agent = (*Scripted)(nil)

func NewScripted(name string, responses ...Response) *Scripted {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)

	return &Scripted{name: name, responses: cloned}
}

func (that *Scripted) Name() string {
	return that.name
}

func (that *Scripted) ExecuteTurn(_ context.Context, request entity.MoveRequest) (entity.MoveResponse, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.requests = append(that.requests, request)

	if that.index >= len(that.responses) {
		return entity.MoveResponse{}, &agent.Error{
			Kind:    agent.Internal,
			Message: fmt.Sprintf("script exhausted at step %d", that.index+1),
		}
	}

	current := that.responses[that.index]
	that.index++

	if current.Err != nil {
		return entity.MoveResponse{}, current.Err
	}

	return entity.MoveResponse{ChosenMove: current.Move, Diagnostics: current.Diagnostics}, nil
}

// Requests returns a copy of the requests received so far.
func (that *Scripted) Requests() []entity.MoveRequest {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]entity.MoveRequest, len(that.requests))
	copy(out, that.requests)

	return out
}

// Calls returns how many turns were requested.
func (that *Scripted) Calls() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.requests)
}
