package medicines

import "github.com/porfiria-rules-server/internal/domain"

// safetyTable is the built-in drug safety list, condensed from the Porphyria
// Foundation publication. Drugs that induce hepatic ALA synthase or
// cytochrome P450 are porphyrinogenic and flagged NOT OK for patients with
// acute porphyrias.
var safetyTable = []domain.Medicine{
	{Class: "Barbiturates", Type: "Sedative/Hypnotic", GenericName: "Phenobarbital", BrandName: "Luminal", Conclusion: ConclusionNotOK, References: "ALA synthase induction, multiple attack reports"},
	{Class: "Barbiturates", Type: "Anesthetic", GenericName: "Thiopental", BrandName: "Pentothal", Conclusion: ConclusionNotOK, References: "Attacks reported after induction anesthesia"},
	{Class: "Sulfonamides", Type: "Antibiotic", GenericName: "Sulfamethoxazole", BrandName: "Bactrim", Conclusion: ConclusionNotOK, References: "Classic porphyrinogenic antibiotic"},
	{Class: "Sulfonamides", Type: "Antibiotic", GenericName: "Sulfadiazine", Conclusion: ConclusionNotOK},
	{Class: "Anticonvulsants", Type: "Anticonvulsant", GenericName: "Phenytoin", BrandName: "Dilantin", Conclusion: ConclusionNotOK, References: "CYP450 inducer"},
	{Class: "Anticonvulsants", Type: "Anticonvulsant", GenericName: "Carbamazepine", BrandName: "Tegretol", Conclusion: ConclusionNotOK, References: "CYP450 inducer"},
	{Class: "Anticonvulsants", Type: "Anticonvulsant", GenericName: "Valproic Acid", BrandName: "Depakene", Conclusion: ConclusionNotOK},
	{Class: "Anticonvulsants", Type: "Anticonvulsant", GenericName: "Gabapentin", BrandName: "Neurontin", Conclusion: ConclusionOK, References: "Not metabolized hepatically, safe in acute attacks"},
	{Class: "Anticonvulsants", Type: "Anticonvulsant", GenericName: "Levetiracetam", BrandName: "Keppra", Conclusion: ConclusionOK},
	{Class: "Ergot Alkaloids", Type: "Antimigraine", GenericName: "Ergotamine", BrandName: "Cafergot", Conclusion: ConclusionNotOK},
	{Class: "Progestogens", Type: "Hormone", GenericName: "Medroxyprogesterone", BrandName: "Provera", Conclusion: ConclusionNotOK, References: "Progesterone stimulates hepatic heme synthesis"},
	{Class: "Progestogens", Type: "Hormone", GenericName: "Norethindrone", Conclusion: ConclusionNotOK},
	{Class: "Estrogens", Type: "Hormone", GenericName: "Ethinyl Estradiol", Conclusion: ConclusionProbNotOK, References: "Primarily implicated in cutaneous porphyria"},
	{Class: "Imidazoles", Type: "Antifungal", GenericName: "Ketoconazole", BrandName: "Nizoral", Conclusion: ConclusionNotOK},
	{Class: "Imidazoles", Type: "Antifungal", GenericName: "Fluconazole", BrandName: "Diflucan", Conclusion: ConclusionProbNotOK},
	{Class: "Antibiotics", Type: "Antibiotic", GenericName: "Rifampin", BrandName: "Rifadin", Conclusion: ConclusionNotOK, References: "Potent CYP450 inducer"},
	{Class: "Antibiotics", Type: "Antibiotic", GenericName: "Chloramphenicol", Conclusion: ConclusionNotOK},
	{Class: "Antibiotics", Type: "Antibiotic", GenericName: "Erythromycin", Conclusion: ConclusionProbNotOK},
	{Class: "Antibiotics", Type: "Antibiotic", GenericName: "Amoxicillin", BrandName: "Amoxil", Conclusion: ConclusionOK, References: "Penicillins are safe"},
	{Class: "Antibiotics", Type: "Antibiotic", GenericName: "Penicillin G", Conclusion: ConclusionOK},
	{Class: "Antibiotics", Type: "Antibiotic", GenericName: "Ciprofloxacin", BrandName: "Cipro", Conclusion: ConclusionProbOK},
	{Class: "Tetracyclines", Type: "Antibiotic", GenericName: "Doxycycline", BrandName: "Vibramycin", Conclusion: ConclusionProbNotOK, References: "Photosensitizing, avoid in cutaneous porphyria"},
	{Class: "Tetracyclines", Type: "Antibiotic", GenericName: "Tetracycline", Conclusion: ConclusionProbNotOK, References: "Photosensitizing"},
	{Class: "Diuretics", Type: "Diuretic", GenericName: "Furosemide", BrandName: "Lasix", Conclusion: ConclusionProbNotOK, References: "Photosensitizing sulfonamide derivative"},
	{Class: "Diuretics", Type: "Diuretic", GenericName: "Hydrochlorothiazide", Conclusion: ConclusionProbNotOK, References: "Photosensitizing"},
	{Class: "Diuretics", Type: "Diuretic", GenericName: "Spironolactone", BrandName: "Aldactone", Conclusion: ConclusionNotOK},
	{Class: "Antimalarials", Type: "Antimalarial", GenericName: "Chloroquine", BrandName: "Aralen", Conclusion: ConclusionProbNotOK, References: "Low-dose regimens are used therapeutically in PCT"},
	{Class: "Antimalarials", Type: "Antimalarial", GenericName: "Hydroxychloroquine", BrandName: "Plaquenil", Conclusion: ConclusionProbNotOK},
	{Class: "Retinoids", Type: "Dermatologic", GenericName: "Isotretinoin", BrandName: "Accutane", Conclusion: ConclusionProbNotOK, References: "Photosensitizing"},
	{Class: "NSAIDs", Type: "Analgesic", GenericName: "Naproxen", BrandName: "Aleve", Conclusion: ConclusionProbNotOK, References: "Photosensitizing"},
	{Class: "NSAIDs", Type: "Analgesic", GenericName: "Ibuprofen", BrandName: "Advil", Conclusion: ConclusionOK},
	{Class: "Analgesics", Type: "Analgesic", GenericName: "Acetaminophen", BrandName: "Tylenol", Conclusion: ConclusionOK, References: "Analgesic of choice during attacks"},
	{Class: "Opioids", Type: "Analgesic", GenericName: "Morphine", Conclusion: ConclusionOK, References: "Safe for attack pain management"},
	{Class: "Opioids", Type: "Analgesic", GenericName: "Meperidine", BrandName: "Demerol", Conclusion: ConclusionProbOK},
	{Class: "Phenothiazines", Type: "Antiemetic", GenericName: "Chlorpromazine", BrandName: "Thorazine", Conclusion: ConclusionOK, References: "Used for nausea during attacks"},
	{Class: "Antiemetics", Type: "Antiemetic", GenericName: "Ondansetron", BrandName: "Zofran", Conclusion: ConclusionProbOK},
	{Class: "Beta Blockers", Type: "Cardiovascular", GenericName: "Propranolol", BrandName: "Inderal", Conclusion: ConclusionOK, References: "Treats attack tachycardia and hypertension"},
	{Class: "Beta Blockers", Type: "Cardiovascular", GenericName: "Atenolol", BrandName: "Tenormin", Conclusion: ConclusionOK},
	{Class: "Insulins", Type: "Antidiabetic", GenericName: "Insulin", Conclusion: ConclusionOK},
	{Class: "Sulfonylureas", Type: "Antidiabetic", GenericName: "Glipizide", BrandName: "Glucotrol", Conclusion: ConclusionProbNotOK, References: "Sulfonamide-related"},
	{Class: "Benzodiazepines", Type: "Sedative", GenericName: "Lorazepam", BrandName: "Ativan", Conclusion: ConclusionProbOK},
	{Class: "Benzodiazepines", Type: "Sedative", GenericName: "Diazepam", BrandName: "Valium", Conclusion: ConclusionUncertain, References: "Conflicting reports"},
	{Class: "Anesthetics", Type: "Anesthetic", GenericName: "Propofol", BrandName: "Diprivan", Conclusion: ConclusionOK, References: "Induction agent of choice"},
	{Class: "Anesthetics", Type: "Anesthetic", GenericName: "Ketamine", BrandName: "Ketalar", Conclusion: ConclusionProbOK},
}
