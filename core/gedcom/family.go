package gedcom

// ChildPedigree és el vincle d'un fill indicat al mateix FAM (_FREL/_MREL).
type ChildPedigree struct {
	Father PedigreeLinkageType
	Mother PedigreeLinkageType
}

type FamilyRecord struct {
	RecordBase
	Husband          string
	Wife             string
	Children         []string
	ChildPedigrees   map[string]*ChildPedigree
	Events           []*FamilyEvent
	NumberOfChildren string
	Submitters       []string
}

func (*FamilyRecord) Kind() RecordKind { return KindFamily }

func (f *FamilyRecord) HasChild(xref string) bool {
	for _, c := range f.Children {
		if c == xref {
			return true
		}
	}
	return false
}

func (f *FamilyRecord) childPedigree(xref string) *ChildPedigree {
	if f.ChildPedigrees == nil {
		f.ChildPedigrees = map[string]*ChildPedigree{}
	}
	cp := f.ChildPedigrees[xref]
	if cp == nil {
		cp = &ChildPedigree{}
		f.ChildPedigrees[xref] = cp
	}
	return cp
}

// Marriage retorna el primer MARR, o nil.
func (f *FamilyRecord) Marriage() *FamilyEvent {
	for _, ev := range f.Events {
		if ev.EventType == EventMarriage {
			return ev
		}
	}
	return nil
}
