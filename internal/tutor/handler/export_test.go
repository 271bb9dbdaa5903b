package handler

// Aliases so the external handler_test package can exercise unexported
// helpers without creating an import cycle through the router package.
var (
	SecureFilename = secureFilename
	AllowedFile    = allowedFile
)
