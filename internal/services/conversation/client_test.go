package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/conversation/llm"
	"github.com/mcoot/chefgenie/internal/testutil"
)

// mockModel is a testify mock of llm.Model
type mockModel struct {
	mock.Mock
}

func (m *mockModel) Generate(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// lastUserTurn matches a request whose final message is text
func lastUserTurn(text string) any {
	return mock.MatchedBy(func(req llm.Request) bool {
		if len(req.History) == 0 {
			return false
		}
		last := req.History[len(req.History)-1]
		return last.Role == llm.RoleUser && last.Text == text
	})
}

const (
	questionReply = `{"type":"question","content":"Is it sweet?","emotion":"happy","thinking":"","confidence":5,"options":["Yes","No"]}`
	guessReply    = `{"type":"guess","content":"Gulab Jamun","emotion":"confident","thinking":"","confidence":90,"options":[]}`
)

type ClientSuite struct {
	suite.Suite
	model  *mockModel
	client *Client
	ctx    context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.model = new(mockModel)
	s.client = NewClient(s.model, "- **Indian:** Idli", testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ClientSuite) TearDownTest() {
	s.model.AssertExpectations(s.T())
}

func (s *ClientSuite) TestSystemInstructionCarriesRules() {
	instruction := SystemInstruction("- **Indian:** Idli")

	// The model owns the question limit and when to guess
	s.Contains(instruction, "Max 20 questions.")
	s.Contains(instruction, "If >85%, make a GUESS.")
	s.Contains(instruction, "- **Indian:** Idli")
}

func (s *ClientSuite) TestStartGameSendsOpeningMessage() {
	s.model.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return len(req.History) == 1 &&
			req.History[0].Text == openingMessage &&
			strings.Contains(req.SystemInstruction, "- **Indian:** Idli") &&
			req.Schema != nil
	})).Return(questionReply, nil).Once()

	session := s.client.NewSession()
	resp, err := session.StartGame(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.ResponseQuestion, resp.Type)
	s.Equal("Is it sweet?", resp.Content)
	s.Equal(1, session.Turns())
}

func (s *ClientSuite) TestCallsBeforeStartFail() {
	session := s.client.NewSession()

	_, err := session.SendAnswer(s.ctx, "Yes")
	s.ErrorIs(err, model.ErrGameNotStarted)
	_, err = session.SendCorrection(s.ctx, "it was soup")
	s.ErrorIs(err, model.ErrGameNotStarted)
	_, err = session.UndoLastTurn(s.ctx)
	s.ErrorIs(err, model.ErrGameNotStarted)
	_, err = session.SendRealAnswer(s.ctx, "Idli")
	s.ErrorIs(err, model.ErrGameNotStarted)

	s.model.AssertNotCalled(s.T(), "Generate", mock.Anything, mock.Anything)
}

func (s *ClientSuite) TestHistoryAccumulates() {
	s.model.On("Generate", mock.Anything, lastUserTurn(openingMessage)).Return(questionReply, nil).Once()
	s.model.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return len(req.History) == 3 &&
			req.History[1].Role == llm.RoleModel &&
			req.History[1].Text == questionReply &&
			req.History[2].Text == "Yes"
	})).Return(guessReply, nil).Once()

	session := s.client.NewSession()
	_, err := session.StartGame(s.ctx)
	s.Require().NoError(err)

	resp, err := session.SendAnswer(s.ctx, "Yes")
	s.Require().NoError(err)
	s.True(resp.IsGuess())
	s.Equal(2, session.Turns())
}

func (s *ClientSuite) TestMessageTemplates() {
	s.model.On("Generate", mock.Anything, lastUserTurn(openingMessage)).Return(questionReply, nil).Once()
	s.model.On("Generate", mock.Anything, lastUserTurn("I (the user) said: it was a soup. Continue the game.")).Return(questionReply, nil).Once()
	s.model.On("Generate", mock.Anything, lastUserTurn(undoMessage)).Return(questionReply, nil).Once()
	s.model.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		last := req.History[len(req.History)-1].Text
		return strings.HasPrefix(last, `The guess was WRONG. The real answer was: "Lentil Soup".`) &&
			strings.Contains(last, "Do not ask more questions, just give your final reaction.")
	})).Return(guessReply, nil).Once()

	session := s.client.NewSession()
	_, err := session.StartGame(s.ctx)
	s.Require().NoError(err)
	_, err = session.SendCorrection(s.ctx, "it was a soup")
	s.Require().NoError(err)
	_, err = session.UndoLastTurn(s.ctx)
	s.Require().NoError(err)
	_, err = session.SendRealAnswer(s.ctx, "Lentil Soup")
	s.Require().NoError(err)
}

func (s *ClientSuite) TestTransportErrorLeavesHistoryUntouched() {
	s.model.On("Generate", mock.Anything, lastUserTurn(openingMessage)).Return(questionReply, nil).Once()
	s.model.On("Generate", mock.Anything, lastUserTurn("Yes")).Return("", model.ErrModelUnavailable).Once()

	session := s.client.NewSession()
	_, err := session.StartGame(s.ctx)
	s.Require().NoError(err)

	_, err = session.SendAnswer(s.ctx, "Yes")
	s.ErrorIs(err, model.ErrModelUnavailable)
	s.Equal(1, session.Turns())
}

func (s *ClientSuite) TestMalformedReplyIsRejected() {
	s.model.On("Generate", mock.Anything, mock.Anything).Return(`{"type":"shrug","content":"hmm"}`, nil).Once()

	session := s.client.NewSession()
	_, err := session.StartGame(s.ctx)
	s.ErrorIs(err, model.ErrMalformedResponse)
	s.Equal(0, session.Turns())
}

func (s *ClientSuite) TestCloseStopsSession() {
	s.model.On("Generate", mock.Anything, mock.Anything).Return(questionReply, nil).Once()

	session := s.client.NewSession()
	_, err := session.StartGame(s.ctx)
	s.Require().NoError(err)

	session.Close()

	_, err = session.SendAnswer(s.ctx, "Yes")
	s.ErrorIs(err, model.ErrGameNotStarted)
	_, err = session.StartGame(s.ctx)
	s.ErrorIs(err, model.ErrGameNotStarted)
}

func (s *ClientSuite) TestStartGameResetsHistory() {
	s.model.On("Generate", mock.Anything, lastUserTurn(openingMessage)).Return(questionReply, nil).Twice()

	session := s.client.NewSession()
	_, err := session.StartGame(s.ctx)
	s.Require().NoError(err)
	_, err = session.StartGame(s.ctx)
	s.Require().NoError(err)

	s.Equal(1, session.Turns())
}

func (s *ClientSuite) TestContextCancellationPropagates() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.model.On("Generate", ctx, mock.Anything).Return("", context.Canceled).Once()

	_, err := s.client.NewSession().StartGame(ctx)
	s.True(errors.Is(err, context.Canceled))
}
