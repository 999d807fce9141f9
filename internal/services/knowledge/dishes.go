package knowledge

// defaultCategories is the sample list the model is primed with. Order matters:
// it is the order categories appear in the prompt.
var defaultCategories = []Category{
	{Name: "Indian", Dishes: []string{"Paneer Butter Masala", "Dal Makhani", "Masala Dosa", "Idli", "Samosa", "Chole Bhature", "Pav Bhaji", "Palak Paneer", "Veg Biryani", "Aloo Gobi", "Vada Pav", "Pani Puri", "Dhokla", "Rajma Chawal", "Malai Kofta"}},
	{Name: "Italian", Dishes: []string{"Pizza Margherita", "Pasta Arrabbiata", "Mushroom Risotto", "Vegetable Lasagna", "Gnocchi", "Bruschetta", "Focaccia", "Caprese Salad", "Pesto Pasta", "Eggplant Parmigiana", "Ravioli (Spinach/Ricotta)"}},
	{Name: "Mexican", Dishes: []string{"Bean Burrito", "Veggie Tacos", "Cheese Quesadilla", "Nachos with Salsa", "Guacamole & Chips", "Vegetarian Enchiladas", "Churros", "Vegetarian Chili", "Corn on the Cob (Elote)"}},
	{Name: "Asian", Dishes: []string{"Vegetable Stir Fry", "Spring Rolls", "Veg Sushi (Avocado/Cucumber)", "Mapo Tofu (Veg)", "Pad Thai (Veg)", "Ramen (Miso/Veg)", "Veg Dim Sum", "Fried Rice", "Kimchi", "Vegetable Tempura", "Banh Mi (Tofu)"}},
	{Name: "Middle Eastern & Mediterranean", Dishes: []string{"Falafel", "Hummus & Pita", "Shakshuka", "Tabbouleh", "Baba Ganoush", "Fattoush Salad", "Baklava", "Manakish", "Dolma (Stuffed Grape Leaves)", "Lentil Soup"}},
	{Name: "African", Dishes: []string{"Injera with Shiro Wat (Ethiopian)", "Vegetable Tagine (Moroccan)", "Jollof Rice (Veg)", "Bunny Chow (Bean Curry)", "Couscous with Vegetables"}},
	{Name: "American & European", Dishes: []string{"Veggie Burger", "Mac & Cheese", "Grilled Cheese", "French Fries", "Greek Salad", "Pancakes", "Waffles", "Potato Salad", "Spinach Quiche", "Spanakopita", "Pierogi (Potato/Cheese)"}},
	{Name: "South American", Dishes: []string{"Arepas (Cheese/Bean)", "Empanadas (Spinach/Cheese)", "Pao de Queijo (Cheese Bread)"}},
	{Name: "Desserts & Sweets", Dishes: []string{"Chocolate Cake", "Ice Cream", "Apple Pie", "Cheesecake", "Fruit Salad", "Donuts", "Croissant", "Brownie", "Tiramisu (Eggless)", "Chocolate Mousse", "Gulab Jamun", "Rasmalai", "Mochi", "Mango Sticky Rice", "Crepes"}},
}
