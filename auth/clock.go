package auth

import "time"

// nowUTC is swapped in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }
