package storage

import (
	"github.com/mcoot/chefgenie/internal/model"
)

// Namespace groups keys of the same kind
type Namespace string

const (
	NamespaceUsers   Namespace = "users"
	NamespaceSession Namespace = "session"
	NamespaceScores  Namespace = "scores"
	NamespaceVolume  Namespace = "volume"
)

// Key names one stored value. Owner is empty for global keys.
type Key struct {
	Namespace Namespace
	Owner     string
}

// String renders the key as "namespace" or "namespace:owner"
func (k Key) String() string {
	if k.Owner == "" {
		return string(k.Namespace)
	}
	return string(k.Namespace) + ":" + k.Owner
}

// UsersKey returns the key of the global users collection
func UsersKey() Key {
	return Key{Namespace: NamespaceUsers}
}

// SessionKey returns the key of a client's current-session pointer
func SessionKey(client model.ClientID) Key {
	return Key{Namespace: NamespaceSession, Owner: string(client)}
}

// ScoresKey returns the key of a client's scores blob
func ScoresKey(client model.ClientID) Key {
	return Key{Namespace: NamespaceScores, Owner: string(client)}
}

// VolumeKey returns the key of a client's persisted volume
func VolumeKey(client model.ClientID) Key {
	return Key{Namespace: NamespaceVolume, Owner: string(client)}
}
