// Package credentials generates temporary passwords for new staff accounts
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word lists for generating memorable temporary passwords
var adjectives = []string{
	"agile", "brave", "bright", "calm", "clever", "daring", "eager", "fast",
	"fit", "bold", "keen", "lively", "mighty", "nimble", "quick", "rapid",
	"sharp", "steady", "strong", "swift", "tough", "vivid", "wild", "zesty",
}

var nouns = []string{
	"sprinter", "striker", "keeper", "gymnast", "hurdler", "vaulter", "runner", "jumper",
	"captain", "coach", "champion", "relay", "marathon", "goal", "medal", "podium",
	"whistle", "tracksuit", "stadium", "pitch", "javelin", "discus", "beam", "rings",
}

// GenerateTemporaryPassword returns an "adjective-noun-NNNN" password. It is
// always longer than the minimum staff password length.
func GenerateTemporaryPassword() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", adjective, noun, n.Int64()), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
