package domain

import "github.com/google/uuid"

// DefaultSectionTypes lists the experience sections seeded into a new document, in order.
var DefaultSectionTypes = []string{"Work", "Internship", "Volunteership"}

// DefaultPortfolio returns the payload a fresh portfolio is seeded with.
// Every call returns a new document with freshly generated item identities.
func DefaultPortfolio() *Portfolio {
	p := &Portfolio{
		Contact:    DefaultContact(),
		Experience: Experience{Title: "Experience", Sections: DefaultSections()},
		Projects: []Project{
			{
				ID:          uuid.NewString(),
				Title:       "Portfolio Website",
				Description: "A personal portfolio website showcasing my projects and skills, built using React and Tailwind CSS.",
				Image:       "",
				ButtonText:  "See Project",
				ButtonLink:  "#",
			},
		},
		Skills: Skills{
			Languages: []Skill{
				{Name: "Java", Icon: "FaJava", Color: "text-red-500"},
				{Name: "PHP", Icon: "FaPhp", Color: "text-blue-500"},
				{Name: "JavaScript", Icon: "FaJsSquare", Color: "text-yellow-500"},
				{Name: "Python", Icon: "FaPython", Color: "text-blue-400"},
				{Name: "C", Icon: "SiC", Color: "text-blue-500"},
				{Name: "C++", Icon: "SiCplusplus", Color: "text-blue-700"},
			},
			FrameworksAndTechnologies: []Skill{
				{Name: "Android", Icon: "FaAndroid", Color: "text-green-500"},
				{Name: "React", Icon: "FaReact", Color: "text-blue-500"},
				{Name: "Node.js", Icon: "FaNodeJs", Color: "text-green-600"},
				{Name: "Next.js", Icon: "SiNextdotjs", Color: "text-white"},
			},
			ToolsAndPlatforms: []Skill{
				{Name: "Android Studio", Icon: "FaAndroid", Color: "text-blue-500"},
				{Name: "Git", Icon: "FaGitAlt", Color: "text-red-500"},
				{Name: "Docker", Icon: "FaDocker", Color: "text-blue-500"},
			},
			Databases: []Skill{
				{Name: "MySQL", Icon: "SiMysql", Color: "text-teal-500"},
				{Name: "MongoDB", Icon: "SiMongodb", Color: "text-green-500"},
			},
		},
		ResumeURL: "",
	}
	p.Normalize()
	return p
}

// DefaultContact returns the seeded contact block.
func DefaultContact() Contact {
	return Contact{
		Title:       "Contact",
		Description: "Feel free to reach out to me for collaborations, projects, or just to say hi!",
		Socials: []Social{
			{Name: "LinkedIn", Icon: "FaLinkedin", URL: "https://www.linkedin.com/in/abhishek-sharma-069-i/"},
			{Name: "Twitter", Icon: "FaTwitter", URL: "https://x.com/AbhishekShar069"},
			{Name: "Instagram", Icon: "FaInstagram", URL: "https://www.instagram.com/pt_abhishek_sharma_069/"},
			{Name: "Facebook", Icon: "FaFacebook", URL: "https://www.facebook.com/profile.php?id=100026510589313"},
			{Name: "GitHub", Icon: "FaGithub", URL: "https://github.com/Abhishek-Sharma-069"},
			{Name: "Discord", Icon: "FaDiscord", URL: "https://discordapp.com/users/abhisheksharma069"},
		},
		FormFields:   DefaultFormFields(),
		SubmitButton: SubmitButton{Label: "Send Message"},
	}
}

// DefaultFormFields returns the seeded contact form: name, email and message.
func DefaultFormFields() []FormField {
	rows := 5
	return []FormField{
		{ID: "name", Label: "Name", Type: "text", Placeholder: "Enter your name"},
		{ID: "email", Label: "Email", Type: "email", Placeholder: "Enter your email"},
		{ID: "message", Label: "Message", Type: "textarea", Placeholder: "Enter your message", Rows: &rows},
	}
}

// DefaultSections returns the seeded Work, Internship and Volunteership sections.
func DefaultSections() []Section {
	return []Section{
		{
			Type: "Work",
			Items: []ExperienceItem{
				{ID: uuid.NewString(), Company: "----", Role: "---", Duration: "Future", Description: "---"},
			},
		},
		{
			Type: "Internship",
			Items: []ExperienceItem{
				{
					ID:          uuid.NewString(),
					Company:     "Growth Ninja Pvt. Ltd.",
					Role:        " App Developer Intern",
					Duration:    "July 2024 to Aug 2024",
					Description: "Worked on a project related to Android development and learned about app development lifecycle.",
				},
				{
					ID:          uuid.NewString(),
					Company:     "United Global Info Services Pvt. Ltd.",
					Role:        "Intern",
					Duration:    "July 2023 to Aug 2023",
					Description: "Learn c++ programming languages, and work on a project related to data structures and algorithms.",
				},
			},
		},
		{
			Type: "Volunteership",
			Items: []ExperienceItem{
				{
					ID:           uuid.NewString(),
					Organization: "GeeksForGeeks",
					Role:         "Campus Ambassador",
					Duration:     "July 2024 to Present",
					Description:  "As a Campus Ambassador, I am responsible for promoting GeeksforGeeks on campus, organizing events, and helping students with their queries.",
				},
				{
					ID:           uuid.NewString(),
					Organization: "GSDC-UIT",
					Role:         "Member",
					Duration:     "January 2024 to Present",
					Description:  "GDSC is a community of developers and designers who are passionate about technology and want to make a difference in the world.",
				},
			},
		},
	}
}
