package dataset

const (
	pykeenRawURL  = "https://raw.githubusercontent.com/pykeen/pykeen/master/src/pykeen/datasets"
	kgDatasetsURL = "https://raw.githubusercontent.com/ZhenfengLei/KGDatasets/master"
	codexURL      = "https://raw.githubusercontent.com/tsafavi/codex/master/data/triples"
	conveURL      = "https://github.com/TimDettmers/ConvE/raw/master"
	everestURL    = "https://everest.hds.utc.fr/lib/exe/fetch.php?media=en:"
)

func splitURLs(base string) [3]string {
	return [3]string{
		base + "/" + TrainFileName,
		base + "/" + TestFileName,
		base + "/" + ValidFileName,
	}
}

// Builtin returns all datasets known without configuration.
func Builtin() []Entry {
	return []Entry{
		{
			Name:      "Countries",
			Entities:  271,
			Relations: 2,
			Triples:   1158,
			SplitURLs: splitURLs(kgDatasetsURL + "/Countries/Countries_S1"),
		},
		{
			Name:      "Nations",
			Entities:  14,
			Relations: 55,
			Triples:   1992,
			SplitURLs: splitURLs(pykeenRawURL + "/nations"),
		},
		{
			Name:      "UMLS",
			Entities:  135,
			Relations: 46,
			Triples:   6529,
			SplitURLs: splitURLs(pykeenRawURL + "/umls"),
		},
		{
			Name:      "Kinships",
			Entities:  104,
			Relations: 25,
			Triples:   10686,
			SplitURLs: splitURLs(pykeenRawURL + "/kinships"),
		},
		{
			Name:      "DBpedia50",
			Entities:  24624,
			Relations: 351,
			Triples:   34421,
			SplitURLs: splitURLs(kgDatasetsURL + "/DBpedia50"),
		},
		{
			Name:      "CoDExSmall",
			Entities:  2034,
			Relations: 42,
			Triples:   36543,
			SplitURLs: splitURLs(codexURL + "/codex-s"),
		},
		{
			Name:        "WN18RR",
			Entities:    40559,
			Relations:   11,
			Triples:     92583,
			ArchiveURL:  conveURL + "/WN18RR.tar.gz",
			ArchiveName: "WN18RR.tar.gz",
			Members:     [3]string{"train.txt", "test.txt", "valid.txt"},
		},
		{
			Name:        "WN18",
			Entities:    40943,
			Relations:   18,
			Triples:     151442,
			ArchiveURL:  everestURL + "wordnet-mlj12.tar.gz",
			ArchiveName: "wordnet-mlj12.tar.gz",
			Members: [3]string{
				"wordnet-mlj12/wordnet-mlj12-train.txt",
				"wordnet-mlj12/wordnet-mlj12-test.txt",
				"wordnet-mlj12/wordnet-mlj12-valid.txt",
			},
		},
		{
			Name:      "CoDExMedium",
			Entities:  17050,
			Relations: 51,
			Triples:   206205,
			SplitURLs: splitURLs(codexURL + "/codex-m"),
		},
		{
			Name:        "FB15k-237",
			Entities:    14505,
			Relations:   237,
			Triples:     310079,
			ArchiveURL:  "https://download.microsoft.com/download/8/7/0/8700516A-AB3D-4850-B4BB-805C515AECE1/FB15K-237.2.zip",
			ArchiveName: "FB15K-237.2.zip",
			Members:     [3]string{"Release/train.txt", "Release/test.txt", "Release/valid.txt"},
		},
		{
			Name:        "FB15k",
			Entities:    14951,
			Relations:   1345,
			Triples:     592213,
			ArchiveURL:  everestURL + "fb15k.tgz",
			ArchiveName: "fb15k.tgz",
			Members: [3]string{
				"FB15k/freebase_mtr100_mte100-train.txt",
				"FB15k/freebase_mtr100_mte100-test.txt",
				"FB15k/freebase_mtr100_mte100-valid.txt",
			},
		},
		{
			Name:      "CoDExLarge",
			Entities:  77951,
			Relations: 69,
			Triples:   612437,
			SplitURLs: splitURLs(codexURL + "/codex-l"),
		},
		{
			Name:        "YAGO3-10",
			Entities:    123143,
			Relations:   37,
			Triples:     1089000,
			ArchiveURL:  conveURL + "/YAGO3-10.tar.gz",
			ArchiveName: "YAGO3-10.tar.gz",
			Members:     [3]string{"train.txt", "test.txt", "valid.txt"},
		},
	}
}

// Default returns registry holding all builtin datasets.
func Default() *Registry {
	return NewRegistry(Builtin()...)
}
