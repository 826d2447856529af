package dispatch

// HashJob submits a password for hashing with a fresh salt. Read the result
// from Result, which should be buffered.
type HashJob struct {
	Password []byte
	Result   chan HashResult

	// wipe marks a Password copy owned by the dispatcher.
	wipe bool
}

type HashResult struct {
	Hash string
	Err  error
}

func (j HashJob) execute(b Backend) {
	if j.wipe {
		defer clear(j.Password)
	}
	hash, err := b.Make(j.Password)
	j.Result <- HashResult{Hash: hash, Err: err}
}

// VerifyJob submits a password and stored hash for verification. Read the
// result from Result, which should be buffered.
type VerifyJob struct {
	Password   []byte
	StoredHash string
	Result     chan VerifyResult

	wipe bool
}

type VerifyResult struct {
	Match bool
	Err   error
}

func (j VerifyJob) execute(b Backend) {
	if j.wipe {
		defer clear(j.Password)
	}
	match, err := b.Verify(j.StoredHash, j.Password)
	j.Result <- VerifyResult{Match: match, Err: err}
}
