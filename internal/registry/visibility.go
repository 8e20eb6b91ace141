package registry

import "github.com/asaniustaz/Campusconnect-sub000/internal/model"

// VisibleDocuments filters docs down to the set the requester may see.
// Admins see everything; a head of section sees documents for classes in
// their section; staff see their assigned classes; students see their own
// class. Any other role, or a requester with no matching classes, gets an
// empty set, which is a valid result and not an error.
func VisibleDocuments(requester model.Requester, docs []model.StoredDocument, classes []model.SchoolClass) []model.StoredDocument {
	switch requester.Role {
	case model.RoleAdmin:
		return docs
	case model.RoleHeadOfSection:
		inSection := make(map[string]bool)
		for _, class := range classes {
			if class.Section == requester.Section {
				inSection[class.ID] = true
			}
		}
		return filterDocs(docs, func(doc model.StoredDocument) bool {
			return inSection[doc.ClassID]
		})
	case model.RoleStaff:
		assigned := make(map[string]bool)
		for _, id := range requester.AssignedClasses {
			assigned[id] = true
		}
		return filterDocs(docs, func(doc model.StoredDocument) bool {
			return assigned[doc.ClassID]
		})
	case model.RoleStudent:
		return filterDocs(docs, func(doc model.StoredDocument) bool {
			return requester.ClassID != "" && doc.ClassID == requester.ClassID
		})
	default:
		return nil
	}
}

func filterDocs(docs []model.StoredDocument, keep func(model.StoredDocument) bool) []model.StoredDocument {
	var visible []model.StoredDocument
	for _, doc := range docs {
		if keep(doc) {
			visible = append(visible, doc)
		}
	}
	return visible
}
