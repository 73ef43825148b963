// Package imaging provides image loading, normalisation and the registry of
// named preprocessing transforms used to prepare images for OCR.
//
// # Image Forms
//
// Every image handed to a transform is in one of two forms:
//   - Colour: an opaque *image.NRGBA with its origin at (0,0).
//   - Single-channel: an *image.Gray with its origin at (0,0).
//
// Normalize converts any decoded image into one of these forms. Transforms keep
// the form they were given unless their purpose is to change it (greyscale and
// threshold always produce *image.Gray).
//
// # Immutability
//
// Transforms never write to their input. Each call allocates a new buffer, so a
// caller can always fall back to an image it held before running a sequence of
// transforms.
//
// # Transform Registry
//
// A Registry maps a step name to a Transform. DefaultRegistry returns a registry
// holding the built-in operations:
//   - dilate, erode: morphological operations (iterations, kernel)
//   - greyscale: luma (or CIE lightness) single-channel conversion (method)
//   - invert: bitwise complement of every channel
//   - resize: independent x/y scaling (fx, fy, interpolation)
//   - threshold: greyscale, optional median blur, Otsu binarisation
//     (MedianBlur, Binary_OTSU)
//
// Missing or unparseable option values always fall back to documented defaults.
//
// # Degradation
//
// A Transform that cannot do its job returns its input unchanged together with a
// *DegradedError. The returned image is always usable; callers record the error
// as a warning and carry on.
//
// # Thread Safety
//
// ImageCache and Registry lookups are safe for concurrent use. Transforms are
// stateless and may run concurrently on the same input image.
package imaging
