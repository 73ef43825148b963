// Package ocr defines the OCR engine contract and the scoring applied to every
// recognition result.
//
// An Engine turns an image into word tokens and a full-text string. Concrete
// engines live in subpackages:
//   - ocr/tesseract: Tesseract through the gosseract bindings (requires cgo)
//   - ocr/tesscmd: the tesseract executable, parsing its TSV and text output
//
// # Scoring
//
// Each result is scored by two independent sub-scores:
//
//   - Confidence: the mean engine confidence (0-100) of all tokens that carry
//     text. Tokens the engine marks as non-text regions are excluded; a token
//     whose text is an empty string is still counted.
//   - Irregular: a character-regularity score computed from the words of the
//     full text (ASCII whitespace only separates them). Every character is
//     weighted (ASCII letters and digits 0, other whitespace 0.1, ASCII
//     punctuation 3, anything else 5) and the score is
//     100 * (n - weighted) / n. Clean alphanumeric text scores 100; symbols
//     push the score down, possibly below zero. Empty text scores 0.
//
// The total score is the arithmetic mean of the two. Scores are always finite.
//
// # Prerequisites
//
// Tesseract must be installed on the system for either engine:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Error Handling
//
// Engine failures are wrapped in *Error. Use errors.Is with ErrTimeout,
// ErrEngineUnavailable or ErrNoImage to classify them.
package ocr
