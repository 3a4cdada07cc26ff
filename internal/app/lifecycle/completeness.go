package lifecycle

import "github.com/yigit/admission/internal/app/models"

// RequiredDocumentTypes must each have at least one upload before review.
var RequiredDocumentTypes = []models.DocumentType{
	models.DocumentPhoto,
	models.DocumentMarksheet10,
	models.DocumentMarksheet12,
	models.DocumentAadhar,
}

// EvaluateCompleteness reports whether uploaded covers every required type.
// Verification state and duplicate uploads do not matter.
func EvaluateCompleteness(uploaded []models.DocumentType) bool {
	return len(MissingDocumentTypes(uploaded)) == 0
}

// MissingDocumentTypes returns the required types with no upload, in RequiredDocumentTypes order.
func MissingDocumentTypes(uploaded []models.DocumentType) []models.DocumentType {
	have := make(map[models.DocumentType]struct{}, len(uploaded))
	for _, t := range uploaded {
		have[t] = struct{}{}
	}

	missing := make([]models.DocumentType, 0, len(RequiredDocumentTypes))
	for _, t := range RequiredDocumentTypes {
		if _, ok := have[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
