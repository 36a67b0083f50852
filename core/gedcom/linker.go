package gedcom

import (
	"fmt"
	"strings"
)

// link és la passada final: completa els enllaços entre famílies i individus,
// resol el tipus de filiació i comprova les referències pendents.
func (ps *ParseState) link() {
	db := ps.db

	ps.linkEventFamilies()
	ps.linkFamilyMembers()
	ps.linkIndividualFamilies()
	for _, ind := range db.Individuals() {
		for _, fl := range ind.ChildIn {
			resolvePedigree(db, ind, fl)
		}
	}

	for _, ref := range ps.missing {
		if _, ok := db.Get(ref.xref); ok {
			continue
		}
		if ps.removedNotes[ref.xref] {
			if ref.owner != nil {
				ref.owner.removeNote(ref.xref)
			}
			continue
		}
		from := ""
		if ref.from != "" {
			from = fmt.Sprintf(" a @%s@", ref.from)
		}
		ps.warnings = append(ps.warnings,
			fmt.Sprintf("línia %d: referència trencada @%s@ (%s)%s", ref.line, ref.xref, ref.tag, from))
	}

	for _, c := range ps.sourceCitations {
		if c.SourceXref == "" {
			continue
		}
		if s := db.Source(c.SourceXref); s != nil {
			s.Citations = append(s.Citations, c)
			continue
		}
		ps.warnings = append(ps.warnings, fmt.Sprintf("cita a una font inexistent @%s@", c.SourceXref))
	}
	for _, c := range ps.repoCitations {
		if c.RepositoryXref == "" {
			continue
		}
		if r := db.Repository(c.RepositoryXref); r != nil {
			r.Citations = append(r.Citations, c)
			continue
		}
		ps.warnings = append(ps.warnings, fmt.Sprintf("cita a un arxiu inexistent @%s@", c.RepositoryXref))
	}

	n := 0
	for _, s := range db.Sources() {
		if strings.TrimSpace(s.Title) == "" {
			n++
			s.Title = fmt.Sprintf("Source %d", n)
		}
	}
}

// linkEventFamilies crea el FAMC que falta quan un BIRT o ADOP apunta a una família.
func (ps *ParseState) linkEventFamilies() {
	for _, ind := range ps.db.Individuals() {
		for _, ev := range ind.Events {
			if ev.FamcXref == "" || (ev.EventType != EventBirth && ev.EventType != EventAdoption) {
				continue
			}
			if ps.db.Family(ev.FamcXref) == nil || ind.ChildInFamily(ev.FamcXref) != nil {
				continue
			}
			ind.ChildIn = append(ind.ChildIn, ps.newLink(ev.FamcXref, ind))
		}
	}
}

// linkFamilyMembers afegeix als individus els FAMS/FAMC que la família declara i ells no.
func (ps *ParseState) linkFamilyMembers() {
	for _, fam := range ps.db.Families() {
		for _, x := range []string{fam.Husband, fam.Wife} {
			ind := ps.db.Individual(x)
			if ind == nil || ind.SpouseInFamily(fam.XrefID) != nil {
				continue
			}
			ind.SpouseIn = append(ind.SpouseIn, ps.newLink(fam.XrefID, ind))
		}
		for _, x := range fam.Children {
			ind := ps.db.Individual(x)
			if ind == nil || ind.ChildInFamily(fam.XrefID) != nil {
				continue
			}
			ind.ChildIn = append(ind.ChildIn, ps.newLink(fam.XrefID, ind))
		}
	}
}

// linkIndividualFamilies fa el camí invers: la família no llistava l'individu.
func (ps *ParseState) linkIndividualFamilies() {
	for _, ind := range ps.db.Individuals() {
		for _, fl := range ind.SpouseIn {
			fam := ps.db.Family(fl.Family)
			if fam == nil || fam.Husband == ind.XrefID || fam.Wife == ind.XrefID {
				continue
			}
			switch {
			case ind.Sex == SexFemale && fam.Wife == "":
				fam.Wife = ind.XrefID
			case ind.Sex != SexFemale && fam.Husband == "":
				fam.Husband = ind.XrefID
			case fam.Wife == "":
				fam.Wife = ind.XrefID
			default:
				ps.warnings = append(ps.warnings,
					fmt.Sprintf("@%s@ diu ser cònjuge a @%s@, que ja té els dos cònjuges", ind.XrefID, fam.XrefID))
			}
		}
		for _, fl := range ind.ChildIn {
			fam := ps.db.Family(fl.Family)
			if fam == nil || fam.HasChild(ind.XrefID) {
				continue
			}
			fam.Children = append(fam.Children, ind.XrefID)
		}
	}
}

func (ps *ParseState) newLink(family string, ind *IndividualRecord) *FamilyLink {
	fl := &FamilyLink{Family: family, Individual: ind.XrefID}
	fl.Level = 1
	fl.db = ps.db
	return fl
}

// resolvePedigree decideix la filiació d'un FAMC. Ordre de prioritat, de
// menys a més: PEDI, BIRT amb FAMC, ADOP amb FAMC, _FREL/_MREL de la família.
func resolvePedigree(db *Database, ind *IndividualRecord, fl *FamilyLink) {
	father, mother := fl.FatherPedigree, fl.MotherPedigree
	if father == PedigreeUnknown {
		father = fl.Pedigree
	}
	if mother == PedigreeUnknown {
		mother = fl.Pedigree
	}

	for _, ev := range ind.Events {
		if ev.FamcXref != fl.Family || ev.EventType != EventBirth {
			continue
		}
		father, mother = PedigreeBirth, PedigreeBirth
		fl.Pedigree = PedigreeBirth
	}
	for _, ev := range ind.Events {
		if ev.FamcXref != fl.Family || ev.EventType != EventAdoption {
			continue
		}
		switch ev.AdoptedBy {
		case AdoptedByHusband:
			father = PedigreeAdopted
		case AdoptedByWife:
			mother = PedigreeAdopted
		default:
			father, mother = PedigreeAdopted, PedigreeAdopted
		}
		fl.Pedigree = PedigreeAdopted
	}

	if fam := db.Family(fl.Family); fam != nil {
		if cp := fam.ChildPedigrees[ind.XrefID]; cp != nil {
			if cp.Father != PedigreeUnknown {
				father = cp.Father
			}
			if cp.Mother != PedigreeUnknown {
				mother = cp.Mother
			}
		}
	}

	fl.FatherPedigree, fl.MotherPedigree = father, mother
	if father == mother {
		fl.Pedigree = father
	}
}
