package accounts

// Account is a server-side account row. PassphraseHash is a bcrypt hash;
// DataVersion increments on every accepted push and orders snapshots.
type Account struct {
	ID             string
	Name           string
	PassphraseHash []byte
	DataVersion    int64
}
