package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the email is unknown so both login
// failures take about as long.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("queueless-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
