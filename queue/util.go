package queue

import (
	"math/rand/v2"
)

const randASCII = "abcdefghijklmnopqrstuvwxyz0123456789"

// clientID makes the MQTT client id unique so two bridges on one broker do not kick each other off.
func clientID(name string) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = randASCII[rand.IntN(len(randASCII))]
	}
	return name + "-" + string(b)
}
