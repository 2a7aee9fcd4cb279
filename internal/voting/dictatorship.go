package voting

import (
	"fmt"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Dictatorship returns the favourite alternative of agent.
func Dictatorship(profile domain.Profile, agent domain.Agent) (domain.Alternative, error) {
	ranking, ok := profile.Ranking(agent)
	if !ok {
		return 0, fmt.Errorf("%w: agent %d not in profile of %d agents",
			domain.ErrInvalidAgent, agent, profile.NumAgents())
	}
	return ranking[0], nil
}
