package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/example/identity-service/internal/repo"
)

// Fixed pools for generated display names. 40 adjectives by 41 nouns with a
// two digit suffix give 164k possible nicknames.
var nicknameAdjectives = []string{
	"silly", "quick", "cute", "angry", "hungry", "happy", "clever", "sleepy", "grumpy", "noisy",
	"calm", "cold", "hot", "brave", "timid", "shy", "bold", "lazy", "diligent", "quiet",
	"lively", "odd", "funny", "annoyed", "vague", "creative", "unique", "excited", "drowsy", "shady",
	"scary", "foolish", "sad", "grateful", "slow", "eager", "bashful", "proud", "touchy", "simple",
}

var nicknameNouns = []string{
	"cat", "puppy", "rabbit", "lion", "tiger", "penguin", "elephant", "fox", "wolf", "bear", "raccoon",
	"squirrel", "cheetah", "hyena", "gorilla", "kangaroo", "hamster", "chameleon", "crocodile", "mole", "otter",
	"owl", "sparrow", "eagle", "duck", "turtle", "seal", "dolphin", "whale", "starfish", "meerkat",
	"jellyfish", "koala", "camel", "piglet", "sealion", "iguana", "squid", "octopus", "seagull", "badger",
}

// NicknameGenerator draws random adjective+noun+#NN names until one is free.
type NicknameGenerator struct {
	members repo.MemberRepository
}

func NewNicknameGenerator(members repo.MemberRepository) *NicknameGenerator {
	return &NicknameGenerator{members: members}
}

func randomNickname() string {
	adjective := nicknameAdjectives[rand.Intn(len(nicknameAdjectives))]
	noun := nicknameNouns[rand.Intn(len(nicknameNouns))]
	return fmt.Sprintf("%s%s#%02d", adjective, noun, rand.Intn(100))
}

// Unique rejection-samples until the store reports the name as free. The loop
// is logically unbounded; collision probability only becomes relevant as the
// member count approaches the 164k name space. The store's unique index on
// nickname remains the authoritative guard at insert time.
func (g *NicknameGenerator) Unique(ctx context.Context) (string, error) {
	for {
		nickname := randomNickname()
		exists, err := g.members.ExistsByNickname(ctx, nickname)
		if err != nil {
			return "", err
		}
		if !exists {
			return nickname, nil
		}
	}
}
