package mqtt

import (
	"go.uber.org/zap"

	"github.com/paulvha/wheel-of-fortune/internal/game"
)

// Reporter forwards finished rounds from the game loop to a Publisher.
// Publish failures are logged and never reach the game.
type Reporter struct {
	pub Publisher
	log *zap.SugaredLogger
}

var _ game.Reporter = (*Reporter)(nil)

// NewReporter wraps pub. A nil log discards failures.
func NewReporter(pub Publisher, log *zap.SugaredLogger) *Reporter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reporter{pub: pub, log: log}
}

func (r *Reporter) StateChanged(from, to game.State) {}

func (r *Reporter) LightSelected(light int) {}

func (r *Reporter) ComboPressed(count int) {}

func (r *Reporter) RoundFinished(res game.RoundResult) {
	if err := r.pub.PublishRound(res); err != nil {
		r.log.Warnw("publish round failed", "round", res.ID, "error", err)
	}
}
