package gemini

// MapError exposes mapError to tests.
var MapError = mapError
