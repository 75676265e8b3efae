package auth

import "github.com/zalando/go-keyring"

const (
	appName = "nimbus"
	keyName = "access-key"
)

func Save(key string) error {
	return keyring.Set(appName, keyName, key)
}

func Get() (string, error) {
	key, err := keyring.Get(appName, keyName)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	return key, err
}
