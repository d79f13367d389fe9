package layout

import (
	"github.com/SanteonNL/ahcd/models/namcs"
)

// Record layouts of the NAMCS public use files, taken from the record format
// documentation shipped with each year. Years without an entry were never
// published.

func diagnoses(length int, offsets ...int) Entry {
	specs := make([]FieldSpec, len(offsets))
	for i, off := range offsets {
		specs[i] = FieldSpec{Name: namcs.FieldPhysicianDiagnoses, Offset: off, Length: length}
	}
	return Slots(specs...)
}

func weight(offset, length int) Entry {
	return Field(namcs.FieldVisitWeight, offset, length)
}

var year1973 = YearSchema{
	Year: 1973,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 3, 2),
		Field(namcs.FieldMonthOfBirth, 5, 2),
		Field(namcs.FieldYearOfBirth, 7, 2),
		Field(namcs.FieldSex, 9, 1),
		diagnoses(4, 39, 43, 47),
		weight(71, 10),
	},
}

var year1975 = Derive(year1973, 1975, weight(78, 10))

var year1977 = YearSchema{
	Year: 1977,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 3, 2),
		Field(namcs.FieldMonthOfBirth, 5, 2),
		Field(namcs.FieldYearOfBirth, 7, 2),
		Field(namcs.FieldSex, 9, 1),
		diagnoses(4, 28, 32, 36),
		weight(75, 10),
	},
}

var year1979 = YearSchema{
	Year: 1979,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 3, 2),
		Field(namcs.FieldMonthOfBirth, 5, 2),
		Field(namcs.FieldYearOfBirth, 7, 2),
		Field(namcs.FieldSex, 9, 1),
		diagnoses(6, 29, 35, 41),
		weight(84, 10),
	},
}

var year1980 = YearSchema{
	Year: 1980,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 3, 2),
		Field(namcs.FieldMonthOfBirth, 5, 2),
		Field(namcs.FieldYearOfBirth, 7, 2),
		Field(namcs.FieldSex, 9, 1),
		diagnoses(6, 40, 46, 52),
		weight(122, 10),
	},
}

// From 1985 on the patient age is recorded directly.
var year1985 = YearSchema{
	Year: 1985,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 5, 2),
		Field(namcs.FieldAge, 7, 2),
		Field(namcs.FieldSex, 9, 1),
		diagnoses(6, 57, 63, 69),
		weight(135, 5),
	},
}

var year1989 = YearSchema{
	Year: 1989,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 5, 2),
		Field(namcs.FieldAge, 7, 2),
		Field(namcs.FieldSex, 9, 1),
		diagnoses(6, 37, 43, 49),
		weight(135, 6),
	},
}

var year1991 = YearSchema{
	Year: 1991,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 5, 2),
		Field(namcs.FieldAge, 7, 2),
		Field(namcs.FieldSex, 9, 1),
		weight(153, 6),
		diagnoses(6, 39, 45, 51),
	},
}

var year1993 = Derive(year1991, 1993, weight(160, 6))

var year1995 = Derive(year1991, 1995,
	Field(namcs.FieldAge, 7, 3),
	Field(namcs.FieldSex, 10, 1),
	weight(196, 6),
	diagnoses(5, 52, 57, 62),
)

// From 1997 on the year of visit is written with four digits.
var year1997 = YearSchema{
	Year: 1997,
	Entries: []Entry{
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldYearOfVisit, 3, 4),
		Field(namcs.FieldAge, 8, 3),
		Field(namcs.FieldSex, 11, 1),
		weight(297, 6),
		diagnoses(6, 567, 573, 579),
	},
}

var year1999 = Derive(year1997, 1999, weight(307, 6), diagnoses(6, 577, 583, 589))

var year2001 = Derive(year1997, 2001, weight(273, 6), diagnoses(6, 547, 553, 559))

var year2003 = Derive(year2001, 2003, weight(288, 6), diagnoses(6, 723, 729, 735))

var year2005 = Derive(year1997, 2005, weight(271, 6), diagnoses(6, 703, 709, 715))

var year2006 = Derive(year2005, 2006, weight(276, 6), diagnoses(6, 826, 832, 838))

var year2007 = Derive(year1997, 2007, weight(303, 6), diagnoses(6, 909, 915, 921))

var year2009 = Derive(year2007, 2009, weight(294, 6), diagnoses(6, 892, 898, 904))

var year2010 = Derive(year2007, 2010, weight(294, 6), diagnoses(6, 919, 925, 931))

// From 2011 on the year of visit is no longer part of the record and is taken
// from the source file.
var year2011 = YearSchema{
	Year: 2011,
	Entries: []Entry{
		weight(286, 6),
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldAge, 4, 3),
		Field(namcs.FieldSex, 7, 1),
		diagnoses(6, 919, 925, 931),
	},
}

var year2012 = YearSchema{
	Year: 2012,
	Entries: []Entry{
		weight(1383, 11),
		Field(namcs.FieldMonthOfVisit, 1, 2),
		Field(namcs.FieldAge, 4, 3),
		Field(namcs.FieldSex, 11, 1),
		diagnoses(6, 96, 102, 108),
	},
}

var year2013 = Derive(year2012, 2013, weight(1363, 11))

// From 2014 on five diagnoses are recorded.
var year2014 = Derive(year2012, 2014, weight(2722, 11), diagnoses(6, 146, 152, 158, 164, 170))

var year2015 = Derive(year2012, 2015, weight(2682, 11), diagnoses(6, 148, 154, 160, 166, 172))

// Schemas returns the layouts of every published NAMCS year.
func Schemas() []YearSchema {
	return []YearSchema{
		year1973,
		year1975,
		Derive(year1975, 1976),
		year1977,
		Derive(year1977, 1978),
		year1979,
		year1980,
		Derive(year1980, 1981),
		year1985,
		year1989,
		Derive(year1989, 1990),
		year1991,
		Derive(year1991, 1992),
		year1993,
		Derive(year1993, 1994),
		year1995,
		Derive(year1995, 1996),
		year1997,
		Derive(year1997, 1998),
		year1999,
		Derive(year1999, 2000),
		year2001,
		Derive(year2001, 2002),
		year2003,
		Derive(year2003, 2004),
		year2005,
		year2006,
		year2007,
		Derive(year2007, 2008),
		year2009,
		year2010,
		year2011,
		year2012,
		year2013,
		year2014,
		year2015,
	}
}

// NewDefaultRegistry builds the registry of all published years.
func NewDefaultRegistry() (*Registry, error) {
	return NewRegistry(Schemas()...)
}
